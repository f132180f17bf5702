package session

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/services"
	"github.com/desertthunder/vtx/internal/shared"
	tu "github.com/desertthunder/vtx/internal/testing"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Message
	}
	return out
}

func startDispatcher(t *testing.T, c *Controller, n Notifier) *Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(c, n, shared.NewLogger(io.Discard))
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDispatcher(t *testing.T) {
	t.Run("End To End Against Backend", func(t *testing.T) {
		backend := tu.NewFakeBackend()
		backend.AddUser(t, "alice", "alice@example.com", "hunter2")
		backend.Transcript = models.Transcript{Text: "the quick brown fox", Language: "en"}
		srv := backend.Start(t)

		jar, _ := cookiejar.New(nil)
		client := services.NewAPIService(srv.URL, &http.Client{Jar: jar})
		notes := &recordingNotifier{}
		c := New(Options{Client: client, Previewer: media.NewPreviewer(nil), DownloadDir: t.TempDir()})
		d := startDispatcher(t, c, notes)
		ctx := waitCtx(t)

		v, err := d.Dispatch(ctx, CheckAuthRequested{}, func(v View) bool { return v.AuthResolutions >= 1 })
		if err != nil || v.Screen != ScreenAuth {
			t.Fatalf("expected auth screen, got %v %v", v.Screen, err)
		}

		v, err = d.Dispatch(ctx, LoginRequested{Username: "alice", Password: "hunter2"}, func(v View) bool { return v.AuthResolutions >= 2 })
		if err != nil || v.Screen != ScreenApp || v.User.Username != "alice" {
			t.Fatalf("expected logged in, got %+v %v", v, err)
		}

		path := tu.WriteMediaFile(t, "fox.mp3", []byte("audio-data"))
		file, err := media.Select(path)
		if err != nil {
			t.Fatalf("select failed: %v", err)
		}
		d.Post(FileSelected{File: file})

		v, err = d.Dispatch(ctx, SubmitRequested{}, func(v View) bool { return v.Transcriptions >= 1 })
		if err != nil {
			t.Fatalf("await failed: %v", err)
		}
		if v.LastOutcome != Succeeded || v.ResultText != "the quick brown fox" || !v.ShowDownload {
			t.Errorf("unexpected view %+v", v)
		}

		v, _ = d.Dispatch(ctx, HistoryRequested{}, func(v View) bool { return v.HistoryLoads >= 1 })
		if len(v.History) != 1 || v.History[0].Filename != "fox.mp3" {
			t.Errorf("expected uploaded file in history, got %+v", v.History)
		}

		v, _ = d.Dispatch(ctx, LogoutRequested{}, func(v View) bool { return v.Logouts >= 1 })
		if v.Screen != ScreenAuth || v.ShowDownload {
			t.Errorf("expected cleared session, got %+v", v)
		}

		want := []string{MsgLoggedIn, MsgTranscribed, MsgLoggedOut}
		got := notes.messages()
		if len(got) != len(want) {
			t.Fatalf("expected notifications %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("notification %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("One Request In Flight", func(t *testing.T) {
		gate := make(chan struct{})
		client := &tu.MockClient{TranscribeFunc: func(ctx context.Context, _ *models.SelectedFile) (*models.Transcript, error) {
			<-gate
			return &models.Transcript{Text: "done", Language: "en"}, nil
		}}
		c := New(Options{Client: client})
		d := startDispatcher(t, c, nil)
		ctx := waitCtx(t)

		d.Post(FileSelected{File: videoFile})
		if _, err := d.Dispatch(ctx, SubmitRequested{}, func(v View) bool { return v.State == Requesting }); err != nil {
			t.Fatalf("await failed: %v", err)
		}

		updates, cancel := d.Subscribe(4)
		defer cancel()
		d.Post(SubmitRequested{})
		u := <-updates
		if len(u.Notifications) != 1 || u.Notifications[0].Message != MsgRequestInFlight {
			t.Errorf("expected rejection, got %+v", u.Notifications)
		}

		close(gate)
		v, err := d.Await(ctx, func(v View) bool { return v.Transcriptions >= 1 })
		if err != nil || v.Busy {
			t.Fatalf("expected finished, got %+v %v", v, err)
		}
		if client.CallCount("Transcribe") != 1 {
			t.Errorf("expected one upload, got %d", client.CallCount("Transcribe"))
		}
	})

	t.Run("Await Honours Context", func(t *testing.T) {
		d := startDispatcher(t, New(Options{Client: &tu.MockClient{}}), nil)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := d.Await(ctx, func(View) bool { return false }); err == nil {
			t.Error("expected context error")
		}
	})

	t.Run("Post After Stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		d := NewDispatcher(New(Options{Client: &tu.MockClient{}}), nil, nil)
		cancel()
		d.Run(ctx)

		if d.Post(ThemeToggled{}) {
			t.Error("expected post to fail once stopped")
		}
	})
}
