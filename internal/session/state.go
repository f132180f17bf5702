package session

import (
	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/models"
)

// RequestState is the transcription request lifecycle.
type RequestState int

const (
	Idle RequestState = iota
	Requesting
	Succeeded
	Failed
)

func (s RequestState) String() string {
	switch s {
	case Requesting:
		return "requesting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Screen is the top-level view behind the session gate.
type Screen int

const (
	// ScreenUnknown is shown until the first session check resolves.
	ScreenUnknown Screen = iota
	ScreenAuth
	ScreenApp
)

// AuthMode selects the login or signup form.
type AuthMode int

const (
	AuthLogin AuthMode = iota
	AuthSignup
)

// Title is the heading shown above the form.
func (m AuthMode) Title() string {
	if m == AuthSignup {
		return "Create Account"
	}
	return "Welcome Back"
}

// Toggle returns the other form.
func (m AuthMode) Toggle() AuthMode {
	if m == AuthSignup {
		return AuthLogin
	}
	return AuthSignup
}

// Modal is the read-only overlay currently open.
type Modal int

const (
	ModalNone Modal = iota
	ModalProfile
	ModalHistory
)

// Level is a notification severity.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notification is a transient toast.
type Notification struct {
	Level   Level
	Message string
}

// View is a snapshot of everything a renderer needs. It shares no memory with the controller.
type View struct {
	Screen   Screen
	User     *models.SessionUser
	AuthMode AuthMode
	// AuthPending is set while a login or signup is in flight.
	AuthPending bool
	// AuthFormResets increments each time the auth form should be emptied.
	AuthFormResets int

	File        *models.SelectedFile
	FileInfo    string
	PreviewKind media.Kind
	PreviewURL  string

	State       RequestState
	LastOutcome RequestState
	Busy        bool
	CanSubmit   bool

	// ResultText is what the result pane shows: the transcript, an error line, or nothing.
	ResultText   string
	Language     string
	ShowLanguage bool
	ShowDownload bool
	ShowCopy     bool
	// ResultRevision increments on each success so renderers can scroll the result into view.
	ResultRevision int
	LastDownload   string

	Modal        Modal
	ModalLoading bool
	ModalError   string
	Profile      *models.Profile
	History      []models.HistoryItem
	HistoryEmpty bool

	Theme models.Theme

	// Completion counters let callers wait for a specific round trip.
	Transcriptions  int
	AuthResolutions int
	Logouts         int
	ProfileLoads    int
	HistoryLoads    int
}
