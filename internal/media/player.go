package media

import (
	"strings"
	"sync"
)

// Kind is which player a file routes to.
type Kind int

const (
	PreviewNone Kind = iota
	PreviewVideo
	PreviewAudio
)

func (k Kind) String() string {
	switch k {
	case PreviewVideo:
		return "video"
	case PreviewAudio:
		return "audio"
	default:
		return "none"
	}
}

// PreviewKind routes on the MIME type prefix. Anything other than video/* or audio/* previews nowhere.
func PreviewKind(mimeType string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return PreviewVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return PreviewAudio
	default:
		return PreviewNone
	}
}

// Player is one preview surface.
type Player interface {
	Kind() Kind
	Pause()
	Clear()
	Reload()
	Attach(url string)
	Source() string
	Visible() bool
	Paused() bool
}

// SourcePlayer tracks the source and playback state of a preview. The terminal cannot render media, so playback
// happens wherever the source URL is opened.
type SourcePlayer struct {
	mu      sync.Mutex
	kind    Kind
	src     string
	visible bool
	paused  bool
	loads   int
}

// NewPlayer returns a hidden, empty player of kind.
func NewPlayer(kind Kind) *SourcePlayer {
	return &SourcePlayer{kind: kind, paused: true}
}

func (p *SourcePlayer) Kind() Kind { return p.kind }

func (p *SourcePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

// Clear detaches the source and hides the player.
func (p *SourcePlayer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = ""
	p.visible = false
}

// Reload resets playback so a stale source cannot keep playing.
func (p *SourcePlayer) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	p.paused = true
}

// Attach sets the source and shows the player.
func (p *SourcePlayer) Attach(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = url
	p.visible = url != ""
	p.loads++
}

func (p *SourcePlayer) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

func (p *SourcePlayer) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *SourcePlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Loads counts Attach and Reload calls.
func (p *SourcePlayer) Loads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads
}
