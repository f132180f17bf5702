package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
)

// Profile prints the account profile.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	before := d.Controller().Snapshot().ProfileLoads
	v, err := d.Dispatch(ctx, session.ProfileRequested{}, func(v session.View) bool {
		return v.ProfileLoads > before
	})
	if err != nil {
		return err
	}
	if v.ModalError != "" || v.Profile == nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, v.ModalError)
	}

	if cmd.Bool("json") {
		return r.writeJSON(v.Profile, true)
	}
	r.writePlainHeader("Profile")
	return r.writePlain("%s", formatter.RenderProfile(v.Profile))
}

// History prints past transcriptions in the requested format.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	render, err := formatter.HistoryFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := r.requireClient(); err != nil {
		return err
	}

	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	before := d.Controller().Snapshot().HistoryLoads
	v, err := d.Dispatch(ctx, session.HistoryRequested{}, func(v session.View) bool {
		return v.HistoryLoads > before
	})
	if err != nil {
		return err
	}
	if v.ModalError != "" {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, v.ModalError)
	}

	if cmd.Bool("json") {
		return r.writeJSON(v.History, true)
	}

	data, err := render(v.History)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
		r.logger.Info("history saved", "path", path, "items", len(v.History))
		return r.writePlain("✓ Saved %d transcriptions to %s\n", len(v.History), path)
	}

	_, err = r.output.Write(data)
	return err
}
