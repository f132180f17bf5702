package session

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/vtx/internal/clipboard"
	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/services"
)

// User-facing messages.
const (
	MsgSelectFile        = "Please select a media file first!"
	MsgRequestInFlight   = "A transcription is already in progress"
	MsgTranscribed       = "Transcription completed successfully!"
	MsgTranscribeNetwork = "Network error occurred!"
	MsgLoggedIn          = "Login successful!"
	MsgSignedUp          = "Account created successfully!"
	MsgAuthNetwork       = "Network error. Please try again."
	MsgFillFields        = "Please fill in all fields"
	MsgLoggedOut         = "Logged out successfully"
	MsgLogoutFailed      = "Logout failed"
	MsgDownloaded        = "Transcript downloaded!"
	MsgCopied            = "Copied to clipboard!"
	MsgNoTranscript      = "No transcript available yet"
	MsgProfileFailed     = "Failed to load profile"
	MsgHistoryFailed     = "Failed to load history"
	MsgModalNetwork      = "Network error"
)

// Previewer attaches local previews for the selected file.
type Previewer interface {
	Show(file *models.SelectedFile) (media.Kind, error)
	Reset()
	URL() string
}

// ThemeStore persists the theme.
type ThemeStore interface {
	SaveTheme(models.Theme) error
}

// CookieStore forgets the session cookies for a host.
type CookieStore interface {
	Clear(u *url.URL) error
}

// Options wires a [Controller]. Client is required; every other field may be left nil.
type Options struct {
	Client      services.Client
	Previewer   Previewer
	Clipboard   clipboard.Provider
	Themes      ThemeStore
	Cookies     CookieStore
	BaseURL     *url.URL
	DownloadDir string
	Theme       models.Theme
	Now         func() time.Time
	Logger      *log.Logger
}

// Controller is the single owner of session state.
type Controller struct {
	mu   sync.Mutex
	opts Options

	screen         Screen
	user           *models.SessionUser
	authMode       AuthMode
	authPending    bool
	authFormResets int

	file        *models.SelectedFile
	previewKind media.Kind

	state       RequestState
	lastOutcome RequestState
	busy        bool
	epoch       int

	transcript     *models.Transcript
	resultText     string
	showLanguage   bool
	showExport     bool
	resultRevision int
	lastDownload   string

	modal        Modal
	modalSeq     int
	modalLoading bool
	modalError   string
	profile      *models.Profile
	history      []models.HistoryItem

	theme models.Theme

	transcriptions  int
	authResolutions int
	logouts         int
	profileLoads    int
	historyLoads    int

	pending []Notification
}

// New returns a controller on the auth gate with no file selected.
func New(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	theme := opts.Theme
	if theme == "" {
		theme = models.ThemeDark
	}
	return &Controller{opts: opts, theme: theme}
}

// Handle applies ev and returns the follow-up command, if any.
func (c *Controller) Handle(ev Event) Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := ev.(type) {
	case FileSelected:
		return c.selectFile(ev)
	case SubmitRequested:
		return c.submit()
	case TranscribeFinished:
		c.finishTranscription(ev)
	case CheckAuthRequested:
		return c.checkAuth()
	case AuthChecked:
		c.authChecked(ev)
	case LoginRequested:
		return c.login(ev)
	case SignupRequested:
		return c.signup(ev)
	case AuthFinished:
		c.authFinished(ev)
	case AuthFormToggled:
		c.authMode = c.authMode.Toggle()
	case LogoutRequested:
		return c.logout()
	case LogoutFinished:
		c.logoutFinished(ev)
	case ProfileRequested:
		return c.openProfile()
	case ProfileLoaded:
		c.profileLoaded(ev)
	case HistoryRequested:
		return c.openHistory()
	case HistoryLoaded:
		c.historyLoaded(ev)
	case ModalClosed:
		c.modal, c.modalLoading, c.modalError = ModalNone, false, ""
	case DownloadRequested:
		c.download(ev)
	case CopyRequested:
		c.copyTranscript()
	case ThemeToggled:
		c.toggleTheme()
	default:
		c.opts.Logger.Warn("unhandled event", "type", ev)
	}
	return nil
}

// TakeNotifications returns and clears the notifications raised since the last call.
func (c *Controller) TakeNotifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}

// Snapshot returns the current [View].
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Screen:          c.screen,
		User:            copyUser(c.user),
		AuthMode:        c.authMode,
		AuthPending:     c.authPending,
		AuthFormResets:  c.authFormResets,
		File:            copyFile(c.file),
		FileInfo:        media.FileInfo(c.file),
		PreviewKind:     c.previewKind,
		State:           c.state,
		LastOutcome:     c.lastOutcome,
		Busy:            c.busy,
		CanSubmit:       c.file != nil && c.state != Requesting,
		ResultText:      c.resultText,
		ShowLanguage:    c.showLanguage,
		ShowDownload:    c.showExport,
		ShowCopy:        c.showExport,
		ResultRevision:  c.resultRevision,
		LastDownload:    c.lastDownload,
		Modal:           c.modal,
		ModalLoading:    c.modalLoading,
		ModalError:      c.modalError,
		Theme:           c.theme,
		Transcriptions:  c.transcriptions,
		AuthResolutions: c.authResolutions,
		Logouts:         c.logouts,
		ProfileLoads:    c.profileLoads,
		HistoryLoads:    c.historyLoads,
	}
	if c.opts.Previewer != nil {
		v.PreviewURL = c.opts.Previewer.URL()
	}
	if c.transcript != nil {
		v.Language = c.transcript.LanguageLabel()
	}
	if c.profile != nil {
		p := *c.profile
		v.Profile = &p
	}
	if c.modal == ModalHistory && !c.modalLoading && c.modalError == "" {
		v.History = append([]models.HistoryItem{}, c.history...)
		v.HistoryEmpty = len(c.history) == 0
	}
	return v
}

// Transcript returns the stored transcript, which survives failed attempts.
func (c *Controller) Transcript() *models.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transcript == nil {
		return nil
	}
	t := *c.transcript
	return &t
}

func (c *Controller) notify(level Level, msg string) {
	c.pending = append(c.pending, Notification{Level: level, Message: msg})
	c.opts.Logger.Debug("notify", "level", level, "message", msg)
}

func (c *Controller) selectFile(ev FileSelected) Cmd {
	c.file = ev.File
	c.previewKind = media.PreviewNone
	if ev.File == nil {
		if c.opts.Previewer != nil {
			c.opts.Previewer.Reset()
		}
		return nil
	}

	if c.opts.Previewer != nil {
		kind, err := c.opts.Previewer.Show(ev.File)
		if err != nil {
			c.opts.Logger.Warn("preview unavailable", "file", ev.File.Name, "error", err)
		}
		c.previewKind = kind
	}
	c.opts.Logger.Debug("file selected", "name", ev.File.Name, "mime", ev.File.MIMEType, "size", ev.File.Size)
	return nil
}

func (c *Controller) submit() Cmd {
	if c.file == nil {
		c.notify(LevelError, MsgSelectFile)
		return nil
	}
	if c.state == Requesting {
		c.notify(LevelError, MsgRequestInFlight)
		return nil
	}

	c.state = Requesting
	c.busy = true
	c.resultText = ""
	c.showLanguage = false
	c.showExport = false

	client, file, epoch := c.opts.Client, c.file, c.epoch
	c.opts.Logger.Info("transcribing", "file", file.Name, "size_mb", file.SizeMB())
	return func(ctx context.Context) Event {
		t, err := client.Transcribe(ctx, file)
		return TranscribeFinished{File: file, Transcript: t, Err: err, epoch: epoch}
	}
}

func (c *Controller) finishTranscription(ev TranscribeFinished) {
	if c.state != Requesting {
		return
	}
	defer func() {
		c.state = Idle
		c.busy = false
		c.transcriptions++
	}()

	if ev.epoch != c.epoch {
		c.lastOutcome = Failed
		return
	}

	if ev.Err != nil || ev.Transcript == nil {
		c.lastOutcome = Failed
		c.showExport = false
		c.showLanguage = false

		var se *services.ServerError
		switch {
		case errors.As(ev.Err, &se):
			c.resultText = "Error: " + se.Message
			c.notify(LevelError, se.Message)
		case ev.Err != nil:
			c.resultText = "Network Error: " + ev.Err.Error()
			c.notify(LevelError, MsgTranscribeNetwork)
		default:
			c.resultText = "Network Error: empty response"
			c.notify(LevelError, MsgTranscribeNetwork)
		}
		c.opts.Logger.Warn("transcription failed", "file", fileName(ev.File), "error", ev.Err)
		return
	}

	t := *ev.Transcript
	c.transcript = &t
	c.lastOutcome = Succeeded
	c.resultText = t.Text
	c.showLanguage = true
	c.showExport = true
	c.resultRevision++
	c.notify(LevelSuccess, MsgTranscribed)
	c.opts.Logger.Info("transcription complete", "file", fileName(ev.File), "language", t.Language, "chars", len(t.Text))
}

func (c *Controller) checkAuth() Cmd {
	client := c.opts.Client
	return func(ctx context.Context) Event {
		ok, user, err := client.CheckAuth(ctx)
		return AuthChecked{Authenticated: ok, User: user, Err: err}
	}
}

func (c *Controller) authChecked(ev AuthChecked) {
	c.authResolutions++
	if ev.Err != nil {
		c.opts.Logger.Warn("session check failed", "error", ev.Err)
	}
	if ev.Err != nil || !ev.Authenticated || ev.User == nil {
		c.user = nil
		c.screen = ScreenAuth
		return
	}
	c.user = copyUser(ev.User)
	c.screen = ScreenApp
}

func (c *Controller) login(ev LoginRequested) Cmd {
	if c.authPending {
		return nil
	}
	if strings.TrimSpace(ev.Username) == "" || ev.Password == "" {
		c.notify(LevelError, MsgFillFields)
		return nil
	}

	c.authPending = true
	client := c.opts.Client
	return func(ctx context.Context) Event {
		user, err := client.Login(ctx, ev.Username, ev.Password)
		return AuthFinished{Mode: AuthLogin, User: user, Err: err}
	}
}

func (c *Controller) signup(ev SignupRequested) Cmd {
	if c.authPending {
		return nil
	}
	if strings.TrimSpace(ev.Username) == "" || strings.TrimSpace(ev.Email) == "" || ev.Password == "" {
		c.notify(LevelError, MsgFillFields)
		return nil
	}

	c.authPending = true
	client := c.opts.Client
	return func(ctx context.Context) Event {
		user, err := client.Signup(ctx, ev.Username, ev.Email, ev.Password)
		return AuthFinished{Mode: AuthSignup, User: user, Err: err}
	}
}

func (c *Controller) authFinished(ev AuthFinished) {
	c.authPending = false
	c.authResolutions++

	if ev.Err != nil || ev.User == nil {
		var se *services.ServerError
		if errors.As(ev.Err, &se) {
			c.notify(LevelError, se.Message)
		} else {
			c.notify(LevelError, MsgAuthNetwork)
		}
		c.opts.Logger.Warn("authentication failed", "mode", ev.Mode.Title(), "error", ev.Err)
		return
	}

	c.user = copyUser(ev.User)
	c.screen = ScreenApp
	c.authFormResets++
	if ev.Mode == AuthSignup {
		c.notify(LevelSuccess, MsgSignedUp)
	} else {
		c.notify(LevelSuccess, MsgLoggedIn)
	}
	c.opts.Logger.Info("authenticated", "user", ev.User.Username)
}

func (c *Controller) logout() Cmd {
	client := c.opts.Client
	return func(ctx context.Context) Event {
		return LogoutFinished{Err: client.Logout(ctx)}
	}
}

func (c *Controller) logoutFinished(ev LogoutFinished) {
	c.logouts++
	c.epoch++

	c.user = nil
	c.screen = ScreenAuth
	c.transcript = nil
	c.resultText = ""
	c.showExport = false
	c.showLanguage = false
	c.file = nil
	c.previewKind = media.PreviewNone
	c.modal, c.modalLoading, c.modalError = ModalNone, false, ""
	c.profile, c.history = nil, nil

	if c.opts.Previewer != nil {
		c.opts.Previewer.Reset()
	}
	if c.opts.Cookies != nil && c.opts.BaseURL != nil {
		if err := c.opts.Cookies.Clear(c.opts.BaseURL); err != nil {
			c.opts.Logger.Warn("failed to clear cookies", "error", err)
		}
	}

	if ev.Err != nil {
		c.opts.Logger.Warn("logout request failed", "error", ev.Err)
		c.notify(LevelError, MsgLogoutFailed)
		return
	}
	c.notify(LevelSuccess, MsgLoggedOut)
}

func (c *Controller) openProfile() Cmd {
	c.modal = ModalProfile
	c.modalSeq++
	c.modalLoading = true
	c.modalError = ""
	c.profile = nil

	client, seq := c.opts.Client, c.modalSeq
	return func(ctx context.Context) Event {
		p, err := client.Profile(ctx)
		return ProfileLoaded{Profile: p, Err: err, seq: seq}
	}
}

func (c *Controller) profileLoaded(ev ProfileLoaded) {
	c.profileLoads++
	if c.modal != ModalProfile || ev.seq != c.modalSeq {
		return
	}
	c.modalLoading = false

	switch {
	case services.IsServerError(ev.Err):
		c.modalError = MsgProfileFailed
	case ev.Err != nil || ev.Profile == nil:
		c.modalError = MsgModalNetwork
	default:
		p := *ev.Profile
		c.profile = &p
		return
	}
	c.opts.Logger.Warn("profile fetch failed", "error", ev.Err)
}

func (c *Controller) openHistory() Cmd {
	c.modal = ModalHistory
	c.modalSeq++
	c.modalLoading = true
	c.modalError = ""
	c.history = nil

	client, seq := c.opts.Client, c.modalSeq
	return func(ctx context.Context) Event {
		items, err := client.History(ctx)
		return HistoryLoaded{Items: items, Err: err, seq: seq}
	}
}

func (c *Controller) historyLoaded(ev HistoryLoaded) {
	c.historyLoads++
	if c.modal != ModalHistory || ev.seq != c.modalSeq {
		return
	}
	c.modalLoading = false

	switch {
	case services.IsServerError(ev.Err):
		c.modalError = MsgHistoryFailed
	case ev.Err != nil:
		c.modalError = MsgModalNetwork
	default:
		c.history = append([]models.HistoryItem{}, ev.Items...)
		return
	}
	c.opts.Logger.Warn("history fetch failed", "error", ev.Err)
}

func (c *Controller) download(ev DownloadRequested) {
	if !c.showExport || c.transcript == nil {
		c.notify(LevelError, MsgNoTranscript)
		return
	}

	dir := ev.Dir
	if dir == "" {
		dir = c.opts.DownloadDir
	}
	path, err := formatter.WriteDownload(dir, c.transcript.Text, c.opts.Now())
	if err != nil {
		c.opts.Logger.Error("download failed", "error", err)
		c.notify(LevelError, err.Error())
		return
	}
	c.lastDownload = path
	c.notify(LevelSuccess, MsgDownloaded)
}

// copyTranscript reports success even when the clipboard write fails; the fallback provider is the last resort.
func (c *Controller) copyTranscript() {
	if !c.showExport || c.transcript == nil {
		c.notify(LevelError, MsgNoTranscript)
		return
	}
	if c.opts.Clipboard != nil {
		if err := c.opts.Clipboard.WriteText(c.transcript.Text); err != nil {
			c.opts.Logger.Warn("clipboard write failed", "provider", c.opts.Clipboard.Name(), "error", err)
		}
	}
	c.notify(LevelSuccess, MsgCopied)
}

func (c *Controller) toggleTheme() {
	c.theme = c.theme.Toggle()
	if c.opts.Themes != nil {
		if err := c.opts.Themes.SaveTheme(c.theme); err != nil {
			c.opts.Logger.Warn("failed to save theme", "theme", c.theme, "error", err)
		}
	}
}

func copyUser(u *models.SessionUser) *models.SessionUser {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func copyFile(f *models.SelectedFile) *models.SelectedFile {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}

func fileName(f *models.SelectedFile) string {
	if f == nil {
		return ""
	}
	return f.Name
}
