package session

import (
	"context"

	"github.com/desertthunder/vtx/internal/models"
)

// Event is an input to [Controller.Handle].
type Event interface {
	isEvent()
}

// Cmd performs a blocking operation and reports its outcome as an event.
type Cmd func(ctx context.Context) Event

// FileSelected replaces the selected media file.
type FileSelected struct {
	File *models.SelectedFile
}

// SubmitRequested asks to transcribe the selected file.
type SubmitRequested struct{}

// TranscribeFinished carries the outcome of an upload.
type TranscribeFinished struct {
	File       *models.SelectedFile
	Transcript *models.Transcript
	Err        error
	epoch      int
}

// CheckAuthRequested asks the server whether the stored session is still valid.
type CheckAuthRequested struct{}

// AuthChecked carries the outcome of a session check.
type AuthChecked struct {
	Authenticated bool
	User          *models.SessionUser
	Err           error
}

// LoginRequested submits the login form.
type LoginRequested struct {
	Username string
	Password string
}

// SignupRequested submits the signup form.
type SignupRequested struct {
	Username string
	Email    string
	Password string
}

// AuthFinished carries the outcome of a login or signup.
type AuthFinished struct {
	Mode AuthMode
	User *models.SessionUser
	Err  error
}

// AuthFormToggled switches between the login and signup forms.
type AuthFormToggled struct{}

// LogoutRequested ends the session.
type LogoutRequested struct{}

// LogoutFinished carries the outcome of the logout call.
type LogoutFinished struct {
	Err error
}

// ProfileRequested opens the profile modal.
type ProfileRequested struct{}

// ProfileLoaded carries a profile fetch.
type ProfileLoaded struct {
	Profile *models.Profile
	Err     error
	seq     int
}

// HistoryRequested opens the history modal.
type HistoryRequested struct{}

// HistoryLoaded carries a history fetch.
type HistoryLoaded struct {
	Items []models.HistoryItem
	Err   error
	seq   int
}

// ModalClosed closes whichever modal is open.
type ModalClosed struct{}

// DownloadRequested saves the current transcript. An empty Dir uses the configured download directory.
type DownloadRequested struct {
	Dir string
}

// CopyRequested copies the current transcript to the clipboard.
type CopyRequested struct{}

// ThemeToggled flips between dark and light.
type ThemeToggled struct{}

func (FileSelected) isEvent()       {}
func (SubmitRequested) isEvent()    {}
func (TranscribeFinished) isEvent() {}
func (CheckAuthRequested) isEvent() {}
func (AuthChecked) isEvent()        {}
func (LoginRequested) isEvent()     {}
func (SignupRequested) isEvent()    {}
func (AuthFinished) isEvent()       {}
func (AuthFormToggled) isEvent()    {}
func (LogoutRequested) isEvent()    {}
func (LogoutFinished) isEvent()     {}
func (ProfileRequested) isEvent()   {}
func (ProfileLoaded) isEvent()      {}
func (HistoryRequested) isEvent()   {}
func (HistoryLoaded) isEvent()      {}
func (ModalClosed) isEvent()        {}
func (DownloadRequested) isEvent()  {}
func (CopyRequested) isEvent()      {}
func (ThemeToggled) isEvent()       {}
