package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/server"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/ui"
)

// TUI launches the interactive terminal client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var urls media.URLProvider = media.FileURLs{}
	srv := server.NewPreviewServer(r.config.Preview.Addr(), r.logger)
	if err := srv.Start(ctx); err != nil {
		r.logger.Warn("preview server unavailable, falling back to file URLs", "error", err)
	} else {
		urls = srv
		defer srv.Shutdown()
	}
	previewer := media.NewPreviewer(urls).WithLogger(r.logger)
	defer previewer.Reset()

	opts := r.sessionOptions()
	opts.Previewer = previewer
	opts.Theme = ui.ResolveTheme(opts.Theme, opts.Theme != "", r.config.UI.Theme)

	model := ui.NewModel(ctx, ui.Options{
		Controller: session.New(opts),
		Open:       previewer.Open,
		Logger:     r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
