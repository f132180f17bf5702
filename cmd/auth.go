package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
)

func authPending(v session.View) bool { return v.AuthPending }

// AuthLogin logs in and stores the session cookie.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	return r.authenticate(ctx, session.LoginRequested{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	})
}

// AuthSignup creates an account; the service logs the new account in.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	return r.authenticate(ctx, session.SignupRequested{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	})
}

func (r *Runner) authenticate(ctx context.Context, ev session.Event) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	before := d.Controller().Snapshot().AuthResolutions
	v, err := r.request(ctx, d, ev, authPending, func(v session.View) bool {
		return v.AuthResolutions > before
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if v.Screen != session.ScreenApp || v.User == nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.takeError())
	}

	return r.writePlain("✓ Logged in as %s\n", v.User.Username)
}

// AuthLogout ends the session. Local cookies are cleared even when the request fails.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	before := d.Controller().Snapshot().Logouts
	if _, err := d.Dispatch(ctx, session.LogoutRequested{}, func(v session.View) bool {
		return v.Logouts > before
	}); err != nil {
		return err
	}
	if msg := r.takeError(); msg != "" {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}
	return r.writePlain("✓ %s\n", session.MsgLoggedOut)
}

type authStatus struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.SessionUser `json:"user,omitempty"`
	BaseURL       string              `json:"base_url"`
}

// AuthStatus checks the stored session against /api/check-auth.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status, err := r.checkAuth(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}
	if !status.Authenticated {
		return r.writePlain("✗ Not authenticated (%s)\n", status.BaseURL)
	}
	return r.writePlain("✓ Authenticated as %s (%s)\n", status.User.Username, status.BaseURL)
}

func (r *Runner) checkAuth(ctx context.Context) (*authStatus, error) {
	if err := r.requireClient(); err != nil {
		return nil, err
	}
	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	before := d.Controller().Snapshot().AuthResolutions
	v, err := d.Dispatch(ctx, session.CheckAuthRequested{}, func(v session.View) bool {
		return v.AuthResolutions > before
	})
	if err != nil {
		return nil, err
	}
	return &authStatus{
		Authenticated: v.Screen == session.ScreenApp,
		User:          v.User,
		BaseURL:       r.config.Server.BaseURL,
	}, nil
}

// AuthImport loads cookies from a browser "Copy as cURL" command into the session jar.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}
	if r.cookies == nil {
		return fmt.Errorf("%w: cookie store not initialized", shared.ErrServiceUnavailable)
	}

	var curl *shared.CurlSession
	var err error
	if curlFile != "" {
		curl, err = shared.ParseCurlFile(curlFile)
	} else {
		curl, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	target := r.baseURL()
	if curl.URL != nil {
		target = curl.URL
	}
	if target == nil {
		return fmt.Errorf("%w: no URL to attach cookies to", shared.ErrInvalidInput)
	}
	if base := r.baseURL(); base != nil && target.Host != base.Host {
		r.logger.Warn("imported cookies are for a different host", "curl", target.Host, "server", base.Host)
	}

	cookies := curl.Cookies()
	r.cookies.SetCookies(target, cookies)
	r.logger.Info("imported cookies", "host", target.Host, "count", len(cookies))

	status, err := r.checkAuth(ctx)
	if err != nil {
		return err
	}
	if !status.Authenticated {
		return fmt.Errorf("%w: imported session is not authenticated", shared.ErrNotAuthenticated)
	}
	return r.writePlain("✓ Imported session for %s\n", status.User.Username)
}
