// Package clipboard writes transcript text to the system clipboard, falling back to an OSC 52 terminal escape
// when no native clipboard is reachable (headless sessions, SSH).
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/desertthunder/vtx/internal/shared"
)

// Provider is one way of reaching a clipboard.
type Provider interface {
	Name() string
	Available() bool
	WriteText(text string) error
}

// Native uses the platform clipboard (pbcopy, xclip/xsel/wl-copy, Windows API).
type Native struct{}

func (Native) Name() string { return "native" }

func (Native) Available() bool { return !clipboard.Unsupported }

func (Native) WriteText(text string) error {
	if clipboard.Unsupported {
		return shared.ErrUnsupportedClipboard
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("native clipboard: %w", err)
	}
	return nil
}

// Legacy asks the terminal to set the clipboard with an OSC 52 sequence.
type Legacy struct {
	Out    io.Writer
	Getenv func(string) string
}

// NewLegacy writes sequences to out using the process environment for multiplexer detection.
func NewLegacy(out io.Writer) *Legacy {
	return &Legacy{Out: out, Getenv: os.Getenv}
}

func (l *Legacy) Name() string { return "osc52" }

func (l *Legacy) Available() bool { return l.Out != nil }

func (l *Legacy) WriteText(text string) error {
	if l.Out == nil {
		return shared.ErrUnsupportedClipboard
	}

	seq := osc52.New(text)
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	switch {
	case getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(getenv("TERM"), "screen"):
		seq = seq.Screen()
	}

	if _, err := seq.WriteTo(l.Out); err != nil {
		return fmt.Errorf("osc52 clipboard: %w", err)
	}
	return nil
}

// Select returns the first available provider.
func Select(providers ...Provider) (Provider, error) {
	for _, p := range providers {
		if p != nil && p.Available() {
			return p, nil
		}
	}
	return nil, shared.ErrUnsupportedClipboard
}

// Fallback tries Primary and, when it is unavailable or fails, Secondary.
type Fallback struct {
	Primary   Provider
	Secondary Provider
}

// Default is the native clipboard with an OSC 52 fallback written to out.
func Default(out io.Writer) *Fallback {
	return &Fallback{Primary: Native{}, Secondary: NewLegacy(out)}
}

func (f *Fallback) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

func (f *Fallback) Available() bool {
	return f.Primary.Available() || f.Secondary.Available()
}

// WriteText writes with the first available provider, retrying on Secondary when Primary fails.
func (f *Fallback) WriteText(text string) error {
	p, err := Select(f.Primary, f.Secondary)
	if err != nil {
		return err
	}
	if err := p.WriteText(text); err == nil || p == f.Secondary || !f.Secondary.Available() {
		return err
	}
	return f.Secondary.WriteText(text)
}
