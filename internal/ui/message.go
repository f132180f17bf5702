package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/vtx/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionEvent MsgKind = iota
	MsgToastExpired
)

// sessionEventMsg is the constructor for [MsgSessionEvent]
func sessionEventMsg(ev session.Event) Msg {
	return Msg{kind: MsgSessionEvent, data: ev}
}

// toastExpiredMsg is the constructor for [MsgToastExpired]
func toastExpiredMsg(id int) Msg {
	return Msg{kind: MsgToastExpired, data: id}
}
