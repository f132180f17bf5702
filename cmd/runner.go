package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/clipboard"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/repositories"
	"github.com/desertthunder/vtx/internal/services"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
)

// ThemeRepository loads and stores the theme preference.
type ThemeRepository interface {
	Theme() (models.Theme, bool, error)
	SaveTheme(models.Theme) error
}

// CookieStore is the session cookie jar. Clear forgets the cookies for a host.
type CookieStore interface {
	http.CookieJar
	Clear(u *url.URL) error
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     services.Client
	api        *services.APIService
	httpClient *http.Client
	db         *sql.DB
	themes     ThemeRepository
	cookies    CookieStore
	clipboard  clipboard.Provider
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time

	mu        sync.Mutex
	lastError string
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Dependencies left nil are built from the config file by [Runner.Bootstrap].
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	Client     services.Client
	HTTPClient *http.Client
	Themes     ThemeRepository
	Cookies    CookieStore
	Clipboard  clipboard.Provider
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Client == nil && opts.API != nil {
		opts.Client = opts.API
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		themes:     opts.Themes,
		cookies:    opts.Cookies,
		clipboard:  opts.Clipboard,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger for the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.api != nil {
		r.api.WithLogger(l)
	}
}

// Bootstrap loads the config file and environment, opens the database and builds the API client.
// It runs before every command.
func (r *Runner) Bootstrap(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		}
	}
	r.config.ApplyEnv()
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))

	if r.client != nil {
		return ctx, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return ctx, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	r.themes = repositories.NewPreferenceRepository(db)

	jar, err := repositories.NewPersistentJar(repositories.NewCookieRepository(db), r.logger)
	if err != nil {
		return ctx, err
	}
	r.cookies = jar
	r.httpClient = &http.Client{Jar: jar}

	r.api = services.NewAPIService(r.config.Server.BaseURL, r.httpClient).WithLogger(r.logger)
	r.client = r.api
	r.logger.Debug("runner ready", "base_url", r.api.BaseURL(), "database", r.config.Database.Path)
	return ctx, nil
}

// Close releases the database.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, historyCommand, transcribeCommand, batchCommand,
		previewCommand, themeCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) baseURL() *url.URL {
	u, err := url.Parse(r.config.Server.BaseURL)
	if err != nil {
		return nil
	}
	return u
}

func (r *Runner) savedTheme() models.Theme {
	if r.themes == nil {
		return ""
	}
	theme, ok, err := r.themes.Theme()
	if err != nil {
		r.logger.Warn("failed to load theme", "error", err)
	}
	if !ok {
		return ""
	}
	return theme
}

func (r *Runner) sessionOptions() session.Options {
	opts := session.Options{
		Client:      r.client,
		Clipboard:   r.clipboard,
		BaseURL:     r.baseURL(),
		DownloadDir: r.config.UI.DownloadDir,
		Theme:       r.savedTheme(),
		Now:         r.now,
		Logger:      r.logger,
	}
	if r.themes != nil {
		opts.Themes = r.themes
	}
	if r.cookies != nil {
		opts.Cookies = r.cookies
	}
	return opts
}

// startSession runs a controller behind a dispatcher until the returned stop func is called.
func (r *Runner) startSession(ctx context.Context, opts session.Options) (*session.Dispatcher, func()) {
	ctrl := session.New(opts)
	d := session.NewDispatcher(ctrl, r, r.logger)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	return d, func() {
		cancel()
		<-done
	}
}

// Notify logs notifications and keeps the last error for the command's return value.
func (r *Runner) Notify(n session.Notification) {
	session.LogNotifier{Logger: r.logger}.Notify(n)
	if n.Level == session.LevelError {
		r.mu.Lock()
		r.lastError = n.Message
		r.mu.Unlock()
	}
}

func (r *Runner) takeError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := r.lastError
	r.lastError = ""
	return msg
}

// apply posts ev and returns the update produced by handling it. ev must be comparable.
func (r *Runner) apply(ctx context.Context, d *session.Dispatcher, ev session.Event) (session.Update, error) {
	updates, cancel := d.Subscribe(32)
	defer cancel()

	if !d.Post(ev) {
		return session.Update{}, context.Canceled
	}
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return session.Update{}, context.Canceled
			}
			if u.Event == ev {
				return u, nil
			}
		case <-ctx.Done():
			return session.Update{}, ctx.Err()
		}
	}
}

// request posts ev and, when handling it started a request, waits until done reports the round trip finished.
func (r *Runner) request(
	ctx context.Context, d *session.Dispatcher, ev session.Event,
	started func(session.View) bool, done func(session.View) bool,
) (session.View, error) {
	u, err := r.apply(ctx, d, ev)
	if err != nil {
		return u.View, err
	}
	if !started(u.View) {
		if msg := firstError(u.Notifications); msg != "" {
			return u.View, errors.New(msg)
		}
		return u.View, nil
	}
	return d.Await(ctx, done)
}

func (r *Runner) requireClient() error {
	if r.client == nil {
		return fmt.Errorf("%w: transcription service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func firstError(notes []session.Notification) string {
	for _, n := range notes {
		if n.Level == session.LevelError {
			return n.Message
		}
	}
	return ""
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
