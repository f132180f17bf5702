package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	transcribe key.Binding
	file       key.Binding
	download   key.Binding
	copy       key.Binding
	profile    key.Binding
	history    key.Binding
	open       key.Binding
	theme      key.Binding
	logout     key.Binding
	back       key.Binding
	quit       key.Binding

	// auth form
	next   key.Binding
	prev   key.Binding
	toggle key.Binding
	submit key.Binding
	cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		transcribe: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "transcribe")),
		file:       key.NewBinding(key.WithKeys("f", "/"), key.WithHelp("f", "choose file")),
		download:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		profile:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		history:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "preview")),
		theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		next:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next field")),
		prev:   key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "prev field")),
		toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "login/signup")),
		submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		cancel: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.file, k.transcribe, k.download, k.copy, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.file, k.transcribe, k.open},
		{k.download, k.copy},
		{k.profile, k.history, k.back},
		{k.theme, k.logout, k.quit},
	}
}

// authKeys is the help shown on the auth screen.
type authKeys keyMap

func (k authKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.prev, k.toggle, k.submit, k.cancel}
}

func (k authKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
