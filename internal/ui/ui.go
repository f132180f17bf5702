package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
)

// ToastDuration is how long a notification stays on screen.
const ToastDuration = 3 * time.Second

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// Options wires a [Model]. Controller is required.
type Options struct {
	Controller *session.Controller
	// Open shows the current preview outside the terminal.
	Open func() error
	// Select resolves a typed path; defaults to [media.Select].
	Select func(path string) (*models.SelectedFile, error)
	Logger *log.Logger
}

type toast struct {
	id int
	n  session.Notification
}

// Model is the bubbletea model for the transcription client.
type Model struct {
	ctx        context.Context
	ctrl       *session.Controller
	open       func() error
	selectFile func(string) (*models.SelectedFile, error)
	logger     *log.Logger

	view   session.View
	styles *Palette
	keys   keyMap
	help   help.Model

	spinner spinner.Model
	result  viewport.Model
	history list.Model
	path    textinput.Model
	fields  []textinput.Model
	focus   int

	formResets   int
	historyLoads int

	toasts    []toast
	nextToast int

	width  int
	height int
}

// NewModel creates a new TUI model around ctrl.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Select == nil {
		opts.Select = media.Select
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	path := textinput.New()
	path.Placeholder = "path/to/recording.mp4"
	path.Prompt = "File: "

	fields := make([]textinput.Model, 3)
	for i, placeholder := range []string{"Username", "Email", "Password"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = "> "
		ti.CharLimit = 128
		fields[i] = ti
	}
	fields[fieldPassword].EchoMode = textinput.EchoPassword
	fields[fieldPassword].EchoCharacter = '•'

	history := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	history.Title = "Transcription History"
	history.SetShowStatusBar(false)
	history.SetFilteringEnabled(false)
	history.SetShowHelp(false)

	m := &Model{
		ctx:        ctx,
		ctrl:       opts.Controller,
		open:       opts.Open,
		selectFile: opts.Select,
		logger:     opts.Logger,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		result:     viewport.New(0, 0),
		history:    history,
		path:       path,
		fields:     fields,
	}
	m.view = m.ctrl.Snapshot()
	m.styles = PaletteFor(m.view.Theme)
	return m
}

// Init starts the spinner and resolves the session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.dispatch(session.CheckAuthRequested{}))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch m.view.Screen {
		case session.ScreenAuth:
			return m, m.handleAuthKeys(msg)
		case session.ScreenApp:
			return m, m.handleAppKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		switch msg.kind {
		case MsgSessionEvent:
			return m, m.dispatch(msg.data.(session.Event))
		case MsgToastExpired:
			m.dropToast(msg.data.(int))
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.updateInputs(msg)
}

// View renders the UI based on the current session screen.
func (m *Model) View() string {
	var body string
	switch m.view.Screen {
	case session.ScreenAuth:
		body = m.renderAuth()
	case session.ScreenApp:
		body = m.renderApp()
	default:
		body = fmt.Sprintf("%s Checking session...", m.spinner.View())
	}

	if toasts := m.renderToasts(); toasts != "" {
		return body + "\n\n" + toasts
	}
	return body
}

// dispatch feeds ev to the controller and turns its follow-up into a [tea.Cmd].
func (m *Model) dispatch(ev session.Event) tea.Cmd {
	cmds := []tea.Cmd{m.run(m.ctrl.Handle(ev))}
	for _, n := range m.ctrl.TakeNotifications() {
		cmds = append(cmds, m.pushToast(n))
	}
	cmds = append(cmds, m.sync())
	return tea.Batch(cmds...)
}

func (m *Model) run(cmd session.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		ev := cmd(ctx)
		if ev == nil {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

// sync pulls a fresh snapshot and updates the widgets that mirror it.
func (m *Model) sync() tea.Cmd {
	prev := m.view
	m.view = m.ctrl.Snapshot()
	m.styles = PaletteFor(m.view.Theme)

	var cmds []tea.Cmd
	if m.view.Screen == session.ScreenAuth {
		if prev.Screen != session.ScreenAuth || m.view.AuthFormResets != m.formResets {
			m.formResets = m.view.AuthFormResets
			cmds = append(cmds, m.resetForm())
		} else if prev.AuthMode != m.view.AuthMode {
			cmds = append(cmds, m.focusField(0))
		}
	}
	if m.view.Screen != session.ScreenApp {
		m.path.Blur()
		m.path.Reset()
	}

	if m.view.ResultText != prev.ResultText || m.view.ResultRevision != prev.ResultRevision {
		m.setResult()
		if m.view.ResultRevision != prev.ResultRevision {
			m.result.GotoTop()
		}
	}

	if m.view.HistoryLoads != m.historyLoads {
		m.historyLoads = m.view.HistoryLoads
		cmds = append(cmds, m.history.SetItems(historyItems(m.view.History)))
	}
	return tea.Batch(cmds...)
}

func (m *Model) pushToast(n session.Notification) tea.Cmd {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, n: n})
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg(id) })
}

func (m *Model) pushError(msg string) tea.Cmd {
	return m.pushToast(session.Notification{Level: session.LevelError, Message: msg})
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w
	m.path.Width = max(w-12, 10)
	for i := range m.fields {
		m.fields[i].Width = max(min(w-12, 48), 10)
	}
	m.result.Width = max(w-4, 10)
	m.result.Height = max(h-16, 3)
	m.history.SetSize(max(w-6, 10), max(h-10, 5))
	m.setResult()
}

func (m *Model) setResult() {
	text := m.view.ResultText
	if m.result.Width > 0 {
		text = lipgloss.NewStyle().Width(m.result.Width).Render(text)
	}
	m.result.SetContent(text)
}

func (m *Model) visibleFields() []int {
	if m.view.AuthMode == session.AuthSignup {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldUsername, fieldPassword}
}

func (m *Model) resetForm() tea.Cmd {
	for i := range m.fields {
		m.fields[i].Reset()
	}
	return m.focusField(0)
}

// focusField focuses the pos-th visible field.
func (m *Model) focusField(pos int) tea.Cmd {
	visible := m.visibleFields()
	pos = (pos + len(visible)) % len(visible)
	m.focus = pos
	for i := range m.fields {
		m.fields[i].Blur()
	}
	return m.fields[visible[pos]].Focus()
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.cancel):
		return tea.Quit
	case key.Matches(msg, m.keys.toggle):
		return m.dispatch(session.AuthFormToggled{})
	case key.Matches(msg, m.keys.next):
		return m.focusField(m.focus + 1)
	case key.Matches(msg, m.keys.prev):
		return m.focusField(m.focus - 1)
	case key.Matches(msg, m.keys.submit):
		if m.view.AuthPending {
			return nil
		}
		return m.submitAuth()
	}

	idx := m.visibleFields()[m.focus]
	var cmd tea.Cmd
	m.fields[idx], cmd = m.fields[idx].Update(msg)
	return cmd
}

func (m *Model) submitAuth() tea.Cmd {
	username := strings.TrimSpace(m.fields[fieldUsername].Value())
	password := m.fields[fieldPassword].Value()
	if m.view.AuthMode == session.AuthSignup {
		return m.dispatch(session.SignupRequested{
			Username: username,
			Email:    strings.TrimSpace(m.fields[fieldEmail].Value()),
			Password: password,
		})
	}
	return m.dispatch(session.LoginRequested{Username: username, Password: password})
}

func (m *Model) handleAppKeys(msg tea.KeyMsg) tea.Cmd {
	if m.path.Focused() {
		switch msg.Type {
		case tea.KeyEnter:
			return m.choosePath()
		case tea.KeyEsc:
			m.path.Blur()
			return nil
		case tea.KeyCtrlC:
			return tea.Quit
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return cmd
	}

	if m.view.Modal != session.ModalNone {
		return m.handleModalKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.file):
		return m.path.Focus()
	case key.Matches(msg, m.keys.transcribe):
		return m.dispatch(session.SubmitRequested{})
	case key.Matches(msg, m.keys.download):
		return m.dispatch(session.DownloadRequested{})
	case key.Matches(msg, m.keys.copy):
		return m.dispatch(session.CopyRequested{})
	case key.Matches(msg, m.keys.profile):
		return m.dispatch(session.ProfileRequested{})
	case key.Matches(msg, m.keys.history):
		return m.dispatch(session.HistoryRequested{})
	case key.Matches(msg, m.keys.open):
		return m.openPreview()
	case key.Matches(msg, m.keys.theme):
		return m.dispatch(session.ThemeToggled{})
	case key.Matches(msg, m.keys.logout):
		return m.dispatch(session.LogoutRequested{})
	}

	var cmd tea.Cmd
	m.result, cmd = m.result.Update(msg)
	return cmd
}

func (m *Model) handleModalKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.dispatch(session.ModalClosed{})
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	}
	if m.view.Modal == session.ModalHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return cmd
	}
	return nil
}

// choosePath resolves the typed path. Terminals often quote dropped paths.
func (m *Model) choosePath() tea.Cmd {
	path := strings.Trim(strings.TrimSpace(m.path.Value()), `"'`)
	file, err := m.selectFile(path)
	if err != nil {
		m.logger.Warn("file selection failed", "path", path, "error", err)
		if errors.Is(err, shared.ErrNoFileSelected) {
			return m.pushError(session.MsgSelectFile)
		}
		return m.pushError(err.Error())
	}
	m.path.Blur()
	return m.dispatch(session.FileSelected{File: file})
}

func (m *Model) openPreview() tea.Cmd {
	if m.open == nil {
		return m.pushError("Preview is not available")
	}
	if err := m.open(); err != nil {
		m.logger.Warn("failed to open preview", "error", err)
		if errors.Is(err, shared.ErrNoFileSelected) {
			return m.pushError(session.MsgSelectFile)
		}
		return m.pushError(err.Error())
	}
	return nil
}

// updateInputs forwards cursor blinks and similar messages to the focused input.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	if m.path.Focused() {
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		cmds = append(cmds, cmd)
	}
	for i := range m.fields {
		if m.fields[i].Focused() {
			var cmd tea.Cmd
			m.fields[i], cmd = m.fields[i].Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) renderAuth() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.title.Render(m.view.AuthMode.Title()))
	b.WriteString("\n")

	visible := m.visibleFields()
	for pos, idx := range visible {
		style := s.border
		if pos == m.focus {
			style = s.focus
		}
		b.WriteString(style.Render(m.fields[idx].View()))
		b.WriteString("\n")
	}

	if m.view.AuthPending {
		fmt.Fprintf(&b, "\n%s Please wait...\n", m.spinner.View())
	}

	other := session.AuthSignup
	if m.view.AuthMode == session.AuthSignup {
		other = session.AuthLogin
	}
	fmt.Fprintf(&b, "\n%s\n", s.help.Render("tab: "+other.Title()))
	b.WriteString(m.help.View(authKeys(m.keys)))
	return b.String()
}

func (m *Model) renderApp() string {
	s := m.styles
	var b strings.Builder

	header := s.title.Render("vtx")
	if m.view.User != nil {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, s.help.Render("  signed in as "+m.view.User.Username))
	}
	b.WriteString(header)
	b.WriteString("\n")

	pathStyle := s.border
	if m.path.Focused() {
		pathStyle = s.focus
	}
	b.WriteString(pathStyle.Render(m.path.View()))
	b.WriteString("\n")

	if m.view.File != nil {
		fmt.Fprintf(&b, "%s\n", s.ok.Render(m.view.FileInfo))
		if m.view.PreviewKind != media.PreviewNone {
			fmt.Fprintf(&b, "%s\n", s.help.Render(fmt.Sprintf("%s preview: %s", m.view.PreviewKind, m.view.PreviewURL)))
		}
	}

	if m.view.Modal != session.ModalNone {
		b.WriteString("\n")
		b.WriteString(m.renderModal())
		return b.String()
	}

	b.WriteString("\n")
	switch {
	case m.view.Busy:
		fmt.Fprintf(&b, "%s Transcribing...\n", m.spinner.View())
	case m.view.ResultText != "":
		b.WriteString(m.renderResult())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderResult() string {
	s := m.styles
	var b strings.Builder

	title := s.title.UnsetMarginBottom().Render("Transcript")
	if m.view.ShowLanguage {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", s.badge.Render(m.view.Language))
	}
	b.WriteString(title)
	b.WriteString("\n")

	box := s.border
	if m.view.LastOutcome == session.Failed {
		box = box.BorderForeground(s.err.GetForeground())
	}
	b.WriteString(box.Render(m.result.View()))
	b.WriteString("\n")

	var actions []string
	if m.view.ShowDownload {
		actions = append(actions, "[d] download")
	}
	if m.view.ShowCopy {
		actions = append(actions, "[c] copy")
	}
	if len(actions) > 0 {
		fmt.Fprintf(&b, "%s\n", s.help.Render(strings.Join(actions, "  ")))
	}
	if m.view.LastDownload != "" {
		fmt.Fprintf(&b, "%s\n", s.help.Render("Saved to "+m.view.LastDownload))
	}
	return b.String()
}

func (m *Model) renderModal() string {
	s := m.styles
	var title, body string

	switch m.view.Modal {
	case session.ModalProfile:
		title = "Profile"
		if m.view.Profile != nil {
			body = formatter.RenderProfile(m.view.Profile)
		}
	case session.ModalHistory:
		title = "History"
		switch {
		case m.view.HistoryEmpty:
			body = formatter.EmptyHistoryMessage
		case len(m.view.History) > 0:
			body = m.history.View()
		}
	}

	switch {
	case m.view.ModalLoading:
		body = m.spinner.View() + " Loading..."
	case m.view.ModalError != "":
		body = s.err.Render(m.view.ModalError)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, s.title.Render(title), body, s.help.Render("esc: close"))
	return s.focus.Render(content)
}

func (m *Model) renderToasts() string {
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := m.styles.ok
		if t.n.Level == session.LevelError {
			style = m.styles.err
		}
		lines = append(lines, style.Render(t.n.Message))
	}
	return strings.Join(lines, "\n")
}
