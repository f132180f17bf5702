package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/repositories"
	"github.com/desertthunder/vtx/internal/services"
	"github.com/desertthunder/vtx/internal/shared"
	tu "github.com/desertthunder/vtx/internal/testing"
)

type testEnv struct {
	runner  *Runner
	output  *bytes.Buffer
	backend *tu.FakeBackend
	clip    *recordingClipboard
}

type recordingClipboard struct{ written []string }

func (c *recordingClipboard) Name() string    { return "recording" }
func (c *recordingClipboard) Available() bool { return true }
func (c *recordingClipboard) WriteText(s string) error {
	c.written = append(c.written, s)
	return nil
}

// newTestEnv wires a runner to a fake backend with an in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := tu.NewFakeBackend()
	backend.AddUser(t, "alice", "alice@example.com", "secret")
	srv := backend.Start(t)

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	logger := log.New(io.Discard)
	jar, err := repositories.NewPersistentJar(repositories.NewCookieRepository(db), logger)
	if err != nil {
		t.Fatalf("failed to create jar: %v", err)
	}

	config := shared.DefaultConfig()
	config.Server.BaseURL = srv.URL
	config.UI.DownloadDir = t.TempDir()

	output := &bytes.Buffer{}
	clip := &recordingClipboard{}
	httpClient := &http.Client{Jar: jar}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		API:        services.NewAPIService(srv.URL, httpClient),
		HTTPClient: httpClient,
		Themes:     repositories.NewPreferenceRepository(db),
		Cookies:    jar,
		Clipboard:  clip,
		Logger:     logger,
		Output:     output,
	})
	return &testEnv{runner: runner, output: output, backend: backend, clip: clip}
}

// run executes args against the registered commands.
func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	e.output.Reset()
	app := &cli.Command{Name: "vtx", Commands: e.runner.register(), Writer: io.Discard, ErrWriter: io.Discard}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Run(ctx, append([]string{"vtx"}, args...))
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := e.run(t, args...); err != nil {
		t.Fatalf("vtx %s: %v", strings.Join(args, " "), err)
	}
	return e.output.String()
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAPIService("http://example.test", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.client != api {
				t.Error("expected client to default to the API service")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "profile", "history", "transcribe", "batch", "preview", "theme", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("commands without a client fail", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: log.New(io.Discard)})
		app := &cli.Command{Name: "vtx", Commands: runner.register(), Writer: io.Discard, ErrWriter: io.Discard}

		err := app.Run(context.Background(), []string{"vtx", "profile"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login then status", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")
		if !strings.Contains(out, "Logged in as alice") {
			t.Errorf("expected login confirmation, got %q", out)
		}

		out = env.mustRun(t, "auth", "status")
		if !strings.Contains(out, "Authenticated as alice") {
			t.Errorf("expected authenticated status, got %q", out)
		}
	})

	t.Run("status as JSON before login", func(t *testing.T) {
		env := newTestEnv(t)
		out := env.mustRun(t, "auth", "status", "--json")

		var status authStatus
		if err := json.Unmarshal([]byte(out), &status); err != nil {
			t.Fatalf("expected JSON, got %q: %v", out, err)
		}
		if status.Authenticated {
			t.Error("expected unauthenticated status")
		}
	})

	t.Run("wrong password reports the server message", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.run(t, "auth", "login", "-u", "alice", "-p", "nope")

		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "Invalid username or password") {
			t.Errorf("expected server message, got %v", err)
		}
	})

	t.Run("signup logs the new account in", func(t *testing.T) {
		env := newTestEnv(t)
		out := env.mustRun(t, "auth", "signup", "-u", "bob", "-e", "bob@example.com", "-p", "hunter2")
		if !strings.Contains(out, "Logged in as bob") {
			t.Errorf("expected signup confirmation, got %q", out)
		}
	})

	t.Run("signup with a taken username fails", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.run(t, "auth", "signup", "-u", "alice", "-e", "a@example.com", "-p", "x")
		if err == nil || !strings.Contains(err.Error(), "Username already exists") {
			t.Errorf("expected duplicate username error, got %v", err)
		}
	})

	t.Run("logout clears the session", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")

		out := env.mustRun(t, "auth", "logout")
		if !strings.Contains(out, "Logged out successfully") {
			t.Errorf("expected logout confirmation, got %q", out)
		}
		if cookies := env.runner.cookies.Cookies(env.runner.baseURL()); len(cookies) != 0 {
			t.Errorf("expected no cookies after logout, got %v", cookies)
		}

		out = env.mustRun(t, "auth", "status")
		if !strings.Contains(out, "Not authenticated") {
			t.Errorf("expected unauthenticated status, got %q", out)
		}
	})

	t.Run("import requires a source", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run(t, "auth", "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("import rejects an unauthenticated cookie", func(t *testing.T) {
		env := newTestEnv(t)
		curl := "curl '" + env.runner.config.Server.BaseURL + "/api/profile' -H 'Cookie: session=forged'"

		err := env.run(t, "auth", "import", "--curl", curl)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestAccountCommands(t *testing.T) {
	t.Run("profile requires a session", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run(t, "profile"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("profile renders the card", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")

		out := env.mustRun(t, "profile")
		for _, want := range []string{"Username:       alice", "alice@example.com"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
	})

	t.Run("history formats", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.AddHistory("alice", models.HistoryItem{Filename: "talk.mp4", Transcript: "a talk", Language: "en"})
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")

		if out := env.mustRun(t, "history"); !strings.Contains(out, "talk.mp4") {
			t.Errorf("expected text history, got %q", out)
		}
		if out := env.mustRun(t, "history", "--format", "markdown"); !strings.Contains(out, "# Transcription History") {
			t.Errorf("expected markdown history, got %q", out)
		}

		path := filepath.Join(t.TempDir(), "history.csv")
		env.mustRun(t, "history", "--format", "csv", "--output", path)
		if csv := tu.MustReadFile(t, path); !strings.HasPrefix(csv, "Filename,Date,Language,Transcript") {
			t.Errorf("expected CSV header, got %q", csv)
		}
	})

	t.Run("empty history shows the placeholder", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")

		if out := env.mustRun(t, "history"); !strings.Contains(out, "No transcriptions yet") {
			t.Errorf("expected empty message, got %q", out)
		}
	})

	t.Run("unknown history format", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run(t, "history", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestTranscribeCommands(t *testing.T) {
	t.Run("transcribe prints and exports the transcript", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")
		media := tu.WriteMediaFile(t, "memo.mp3", []byte("ID3 fake audio"))
		dir := t.TempDir()

		out := env.mustRun(t, "transcribe", "--output", dir, "--copy", "--save-beside", media)

		if !strings.Contains(out, "hello world") {
			t.Errorf("expected transcript in output, got %q", out)
		}
		tu.AssertFileExists(t, strings.TrimSuffix(media, ".mp3")+"_transcript.txt")
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "transcript_") {
			t.Errorf("expected one downloaded transcript in %s, got %v (%v)", dir, entries, err)
		}
		if len(env.clip.written) != 1 || env.clip.written[0] != "hello world" {
			t.Errorf("expected transcript copied, got %v", env.clip.written)
		}

		uploads := env.backend.Uploads()
		if len(uploads) != 1 || uploads[0].Filename != "memo.mp3" || uploads[0].ContentType != "audio/mpeg" {
			t.Errorf("unexpected uploads: %+v", uploads)
		}
	})

	t.Run("transcribe as JSON", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")
		media := tu.WriteMediaFile(t, "clip.mp4", []byte("fake video"))

		out := env.mustRun(t, "transcribe", "--json", media)
		var got transcribeOutput
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("expected JSON, got %q: %v", out, err)
		}
		if got.Text != "hello world" || got.Language != "en" || got.MIMEType != "video/mp4" {
			t.Errorf("unexpected output: %+v", got)
		}
	})

	t.Run("server failure surfaces the error line", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")
		env.backend.FailTranscribe(http.StatusInternalServerError, "model exploded")
		media := tu.WriteMediaFile(t, "memo.mp3", []byte("audio"))

		err := env.run(t, "transcribe", media)
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "Error: model exploded") {
			t.Errorf("expected server error line, got %v", err)
		}
	})

	t.Run("missing file argument", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run(t, "transcribe"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("batch transcribes every file", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")
		a := tu.WriteMediaFile(t, "a.mp3", []byte("a"))
		b := tu.WriteMediaFile(t, "b.mp3", []byte("b"))

		out := env.mustRun(t, "batch", "--rate", "100", "--json", a, b)
		var got struct {
			Total     int `json:"total"`
			Succeeded int `json:"succeeded"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("expected JSON, got %q: %v", out, err)
		}
		if got.Total != 2 || got.Succeeded != 2 {
			t.Errorf("expected 2/2 succeeded, got %+v", got)
		}
		if n := len(env.backend.Uploads()); n != 2 {
			t.Errorf("expected 2 uploads, got %d", n)
		}
	})

	t.Run("batch prints each progress line once", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")
		a := tu.WriteMediaFile(t, "a.mp3", []byte("a"))
		b := tu.WriteMediaFile(t, "b.mp3", []byte("b"))

		out := env.mustRun(t, "batch", "--rate", "100", a, b)
		if !strings.Contains(out, "[1/2] Transcribing a.mp3") {
			t.Errorf("expected progress for a.mp3, got %q", out)
		}
		if strings.Contains(out, ": [1/2]") || strings.Contains(out, ": [2/2]") {
			t.Errorf("expected a single step prefix per line, got %q", out)
		}
		if !strings.Contains(out, "Succeeded: 2") {
			t.Errorf("expected summary, got %q", out)
		}
	})

	t.Run("batch reports missing files", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "auth", "login", "-u", "alice", "-p", "secret")

		err := env.run(t, "batch", "--rate", "100", filepath.Join(t.TempDir(), "missing.mp3"))
		if err == nil || !strings.Contains(env.output.String(), "Failed:    1") {
			t.Errorf("expected one failure, got %v with %q", err, env.output.String())
		}
	})
}

func TestThemeCommand(t *testing.T) {
	t.Run("set then toggle", func(t *testing.T) {
		env := newTestEnv(t)

		if out := env.mustRun(t, "theme", "light"); !strings.Contains(out, "Theme set to light") {
			t.Errorf("unexpected output %q", out)
		}
		if out := env.mustRun(t, "theme"); !strings.HasPrefix(out, "light (saved)") {
			t.Errorf("expected saved light theme, got %q", out)
		}
		if out := env.mustRun(t, "theme", "toggle"); !strings.Contains(out, "Theme set to dark") {
			t.Errorf("expected toggle to dark, got %q", out)
		}

		theme, ok, err := env.runner.themes.Theme()
		if err != nil || !ok || theme != models.ThemeDark {
			t.Errorf("expected dark persisted, got %v %v %v", theme, ok, err)
		}
	})

	t.Run("rejects unknown themes", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run(t, "theme", "sepia"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("get prints JSON", func(t *testing.T) {
		env := newTestEnv(t)
		out := env.mustRun(t, "api", "get", "--json", "/api/check-auth")
		if !strings.Contains(out, `"authenticated":false`) {
			t.Errorf("expected check-auth JSON, got %q", out)
		}
	})

	t.Run("post validates JSON", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run(t, "api", "post", "-d", "{", "/api/login"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
