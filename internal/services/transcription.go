package services

import (
	"context"

	"github.com/desertthunder/vtx/internal/models"
)

var _ Client = (*APIService)(nil)

// Default user-facing messages when a failed response carries no "error" field.
const (
	msgLoginFailed         = "Login failed"
	msgSignupFailed        = "Signup failed"
	msgLogoutFailed        = "Logout failed"
	msgProfileFailed       = "Failed to load profile"
	msgHistoryFailed       = "Failed to load history"
	msgTranscriptionFailed = "Transcription failed!"
)

type checkAuthResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.SessionUser `json:"user"`
}

type userResponse struct {
	User *models.SessionUser `json:"user"`
}

type historyResponse struct {
	History []models.HistoryItem `json:"history"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CheckAuth queries /api/check-auth.
func (a *APIService) CheckAuth(ctx context.Context) (bool, *models.SessionUser, error) {
	resp, err := a.Get(ctx, PathCheckAuth)
	if err != nil {
		return false, nil, &NetworkError{Op: "check-auth", Err: err}
	}

	var out checkAuthResponse
	if err := resp.Decode(&out); err != nil {
		return false, nil, &NetworkError{Op: "check-auth", Err: err}
	}

	if !out.Authenticated || out.User == nil {
		return false, nil, nil
	}
	return true, out.User, nil
}

// Login posts credentials to /api/login.
func (a *APIService) Login(ctx context.Context, username, password string) (*models.SessionUser, error) {
	return a.postForUser(ctx, "login", PathLogin, loginRequest{Username: username, Password: password}, msgLoginFailed)
}

// Signup posts a new account to /api/signup.
func (a *APIService) Signup(ctx context.Context, username, email, password string) (*models.SessionUser, error) {
	req := signupRequest{Username: username, Email: email, Password: password}
	return a.postForUser(ctx, "signup", PathSignup, req, msgSignupFailed)
}

func (a *APIService) postForUser(ctx context.Context, op, path string, body any, fallback string) (*models.SessionUser, error) {
	resp, err := a.PostJSON(ctx, path, body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	if !resp.OK() {
		return nil, serverErr(op, resp, fallback)
	}

	var out userResponse
	if err := resp.Decode(&out); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if out.User == nil {
		return nil, networkErr(op, "response is missing user")
	}
	return out.User, nil
}

// Logout posts to /api/logout.
func (a *APIService) Logout(ctx context.Context) error {
	resp, err := a.Post(ctx, PathLogout, nil)
	if err != nil {
		return &NetworkError{Op: "logout", Err: err}
	}
	if !resp.OK() {
		return serverErr("logout", resp, msgLogoutFailed)
	}
	return nil
}

// Profile fetches /api/profile.
func (a *APIService) Profile(ctx context.Context) (*models.Profile, error) {
	resp, err := a.Get(ctx, PathProfile)
	if err != nil {
		return nil, &NetworkError{Op: "profile", Err: err}
	}
	if !resp.OK() {
		return nil, serverErr("profile", resp, msgProfileFailed)
	}

	var out models.Profile
	if err := resp.Decode(&out); err != nil {
		return nil, &NetworkError{Op: "profile", Err: err}
	}
	return &out, nil
}

// History fetches /api/history. A missing list decodes as empty.
func (a *APIService) History(ctx context.Context) ([]models.HistoryItem, error) {
	resp, err := a.Get(ctx, PathHistory)
	if err != nil {
		return nil, &NetworkError{Op: "history", Err: err}
	}
	if !resp.OK() {
		return nil, serverErr("history", resp, msgHistoryFailed)
	}

	var out historyResponse
	if err := resp.Decode(&out); err != nil {
		return nil, &NetworkError{Op: "history", Err: err}
	}
	if out.History == nil {
		out.History = []models.HistoryItem{}
	}
	return out.History, nil
}

// Transcribe uploads file to /transcribe.
func (a *APIService) Transcribe(ctx context.Context, file *models.SelectedFile) (*models.Transcript, error) {
	resp, err := a.PostFile(ctx, PathTranscribe, FormFieldFile, file)
	if err != nil {
		return nil, &NetworkError{Op: "transcribe", Err: err}
	}
	if !resp.OK() {
		return nil, serverErr("transcribe", resp, msgTranscriptionFailed)
	}

	var out models.Transcript
	if err := resp.Decode(&out); err != nil {
		return nil, &NetworkError{Op: "transcribe", Err: err}
	}
	return &out, nil
}

func serverErr(op string, resp *APIResponse, fallback string) *ServerError {
	msg := resp.ErrorMessage()
	if msg == "" {
		msg = fallback
	}
	return &ServerError{Op: op, Status: resp.StatusCode, Message: msg}
}
