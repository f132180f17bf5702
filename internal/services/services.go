package services

import (
	"context"

	"github.com/desertthunder/vtx/internal/models"
)

// Client is the transcription service surface consumed by the session controller.
type Client interface {
	// CheckAuth reports whether the stored session is authenticated and, if so, for which user.
	CheckAuth(ctx context.Context) (bool, *models.SessionUser, error)

	// Login authenticates with username and password; the server sets the session cookie.
	Login(ctx context.Context, username, password string) (*models.SessionUser, error)

	// Signup creates an account and starts a session for it.
	Signup(ctx context.Context, username, email, password string) (*models.SessionUser, error)

	// Logout ends the server-side session.
	Logout(ctx context.Context) error

	// Profile fetches the account details of the session user.
	Profile(ctx context.Context) (*models.Profile, error)

	// History fetches the session user's past transcriptions.
	History(ctx context.Context) ([]models.HistoryItem, error)

	// Transcribe uploads file and returns the transcript.
	Transcribe(ctx context.Context, file *models.SelectedFile) (*models.Transcript, error)
}

// Endpoint paths on the transcription service.
const (
	PathCheckAuth  = "/api/check-auth"
	PathLogin      = "/api/login"
	PathSignup     = "/api/signup"
	PathLogout     = "/api/logout"
	PathProfile    = "/api/profile"
	PathHistory    = "/api/history"
	PathTranscribe = "/transcribe"
)

// FormFieldFile is the multipart field that carries the upload.
const FormFieldFile = "file"
