package media

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/vtx/internal/models"
)

type fakeURLs struct {
	next    int
	revoked []string
	err     error
}

func (f *fakeURLs) Register(path, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	return fmt.Sprintf("http://preview/%d", f.next), nil
}

func (f *fakeURLs) Revoke(url string) { f.revoked = append(f.revoked, url) }

func TestPreviewer(t *testing.T) {
	video := &models.SelectedFile{Name: "a.mp4", Path: "/tmp/a.mp4", MIMEType: "video/mp4"}
	audio := &models.SelectedFile{Name: "b.mp3", Path: "/tmp/b.mp3", MIMEType: "audio/mpeg"}
	other := &models.SelectedFile{Name: "c.pdf", Path: "/tmp/c.pdf", MIMEType: "application/pdf"}

	t.Run("Video Attaches Only To Video Player", func(t *testing.T) {
		p := NewPreviewer(&fakeURLs{})
		kind, err := p.Show(video)
		if err != nil || kind != PreviewVideo {
			t.Fatalf("expected video, got %v %v", kind, err)
		}
		if !p.Video().Visible() || p.Video().Source() == "" {
			t.Error("expected video player attached")
		}
		if p.Audio().Visible() || p.Audio().Source() != "" {
			t.Error("expected audio player untouched")
		}
	})

	t.Run("Audio Attaches Only To Audio Player", func(t *testing.T) {
		p := NewPreviewer(&fakeURLs{})
		if kind, _ := p.Show(audio); kind != PreviewAudio {
			t.Fatalf("expected audio, got %v", kind)
		}
		if !p.Audio().Visible() || p.Video().Visible() {
			t.Error("expected only the audio player visible")
		}
	})

	t.Run("Unsupported Type Attaches Nowhere", func(t *testing.T) {
		urls := &fakeURLs{}
		p := NewPreviewer(urls)
		kind, err := p.Show(other)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if kind != PreviewNone || p.URL() != "" {
			t.Errorf("expected no preview, got %v %q", kind, p.URL())
		}
		if p.Video().Visible() || p.Audio().Visible() || urls.next != 0 {
			t.Error("expected neither player attached and no URL issued")
		}
	})

	t.Run("Reselection Tears Down And Revokes", func(t *testing.T) {
		urls := &fakeURLs{}
		p := NewPreviewer(urls)
		p.Show(video)
		first := p.URL()
		p.Video().(*SourcePlayer).mu.Lock()
		p.Video().(*SourcePlayer).paused = false
		p.Video().(*SourcePlayer).mu.Unlock()

		p.Show(audio)

		if len(urls.revoked) != 1 || urls.revoked[0] != first {
			t.Errorf("expected %s revoked, got %v", first, urls.revoked)
		}
		if p.Video().Visible() || p.Video().Source() != "" || !p.Video().Paused() {
			t.Error("expected video player paused, cleared and hidden")
		}
		if !p.Audio().Visible() {
			t.Error("expected audio player attached")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		urls := &fakeURLs{}
		p := NewPreviewer(urls)
		p.Show(video)
		p.Reset()

		if p.URL() != "" || p.Kind() != PreviewNone || p.Video().Visible() {
			t.Error("expected preview cleared")
		}
		if len(urls.revoked) != 1 {
			t.Errorf("expected one revocation, got %v", urls.revoked)
		}
	})

	t.Run("Register Failure", func(t *testing.T) {
		p := NewPreviewer(&fakeURLs{err: errors.New("server down")})
		if _, err := p.Show(video); err == nil {
			t.Error("expected error")
		}
		if p.Video().Visible() {
			t.Error("expected nothing attached")
		}
	})

	t.Run("Open", func(t *testing.T) {
		var opened string
		p := NewPreviewer(nil).WithOpener(func(u string) error { opened = u; return nil })

		if err := p.Open(); err == nil {
			t.Error("expected error with nothing selected")
		}

		p.Show(video)
		if err := p.Open(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if opened != "file:///tmp/a.mp4" {
			t.Errorf("expected file URL, got %s", opened)
		}
	})
}
