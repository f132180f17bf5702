// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The [Model] is a thin renderer over a [session.Controller]: key presses become session events, the
// controller's follow-up commands run as [tea.Cmd]s and their results are fed back as [Msg] values. After
// every event the model takes a fresh [session.View] snapshot and redraws from it.
//
// Two screens exist. The auth screen shows a login or signup form (tab switches between them). The main
// screen has a file path input, a spinner while a transcription is in flight, a scrollable transcript
// pane with a language badge, and profile/history modals. Notifications appear as toasts for
// [ToastDuration].
//
// Keyboard: f choose file, enter transcribe, d download, c copy, p profile, h history, o open preview,
// t theme, L logout, esc close modal, q quit.
package ui
