package media

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// URLProvider issues revocable URLs for local files.
type URLProvider interface {
	Register(path, mimeType string) (string, error)
	Revoke(url string)
}

// FileURLs hands out file:// URLs. Revoke is a no-op; used when no preview server runs.
type FileURLs struct{}

func (FileURLs) Register(path, _ string) (string, error) {
	return (&url.URL{Scheme: "file", Path: path}).String(), nil
}

func (FileURLs) Revoke(string) {}

// Previewer routes the selected file to the video or audio player.
type Previewer struct {
	mu      sync.Mutex
	video   Player
	audio   Player
	urls    URLProvider
	current string
	kind    Kind
	logger  *log.Logger
	open    func(string) error
}

// NewPreviewer returns a previewer with fresh players. A nil provider falls back to [FileURLs].
func NewPreviewer(urls URLProvider) *Previewer {
	if urls == nil {
		urls = FileURLs{}
	}
	return &Previewer{
		video: NewPlayer(PreviewVideo),
		audio: NewPlayer(PreviewAudio),
		urls:  urls,
		open:  shared.OpenBrowser,
	}
}

// WithLogger sets the logger.
func (p *Previewer) WithLogger(l *log.Logger) *Previewer {
	p.logger = l
	return p
}

// WithOpener replaces the function used by [Previewer.Open].
func (p *Previewer) WithOpener(open func(string) error) *Previewer {
	p.open = open
	return p
}

// Show replaces the current preview with one for file.
func (p *Previewer) Show(file *models.SelectedFile) (Kind, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.teardown()

	kind := PreviewKind(file.MIMEType)
	if kind == PreviewNone {
		if p.logger != nil {
			p.logger.Debug("no preview for type", "file", file.Name, "mime", file.MIMEType)
		}
		return PreviewNone, nil
	}

	src, err := p.urls.Register(file.Path, file.MIMEType)
	if err != nil {
		return PreviewNone, fmt.Errorf("failed to register preview for %s: %w", file.Name, err)
	}

	p.current, p.kind = src, kind
	p.player(kind).Attach(src)

	if p.logger != nil {
		p.logger.Debug("preview attached", "file", file.Name, "kind", kind, "url", src)
	}
	return kind, nil
}

// Reset tears down both players and revokes the current URL.
func (p *Previewer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardown()
}

// URL returns the attached preview URL, or "".
func (p *Previewer) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Kind returns the kind of the attached preview.
func (p *Previewer) Kind() Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind
}

func (p *Previewer) Video() Player { return p.video }
func (p *Previewer) Audio() Player { return p.audio }

// Open hands the preview URL to the system browser.
func (p *Previewer) Open() error {
	src := p.URL()
	if src == "" {
		return fmt.Errorf("%w: nothing to preview", shared.ErrNoFileSelected)
	}
	return p.open(src)
}

func (p *Previewer) teardown() {
	for _, pl := range []Player{p.video, p.audio} {
		pl.Pause()
		pl.Clear()
		pl.Reload()
	}
	if p.current != "" {
		p.urls.Revoke(p.current)
	}
	p.current, p.kind = "", PreviewNone
}

func (p *Previewer) player(k Kind) Player {
	if k == PreviewAudio {
		return p.audio
	}
	return p.video
}
