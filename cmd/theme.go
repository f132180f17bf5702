package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/ui"
)

// Theme prints the effective theme, or sets it to dark, light or the opposite of the current one.
func (r *Runner) Theme(ctx context.Context, cmd *cli.Command) error {
	if r.themes == nil {
		return fmt.Errorf("%w: preference store not initialized", shared.ErrServiceUnavailable)
	}

	saved, ok, err := r.themes.Theme()
	if err != nil {
		return err
	}
	current := ui.ResolveTheme(saved, ok, r.config.UI.Theme)

	arg := strings.ToLower(strings.TrimSpace(cmd.StringArg("theme")))
	switch arg {
	case "":
		source := "saved"
		if !ok {
			source = "config " + r.config.UI.Theme
		}
		return r.writePlain("%s (%s)\n", current, source)

	case "toggle":
		opts := r.sessionOptions()
		opts.Theme = current
		d, stop := r.startSession(ctx, opts)
		defer stop()

		u, err := r.apply(ctx, d, session.ThemeToggled{})
		if err != nil {
			return err
		}
		return r.writePlain("✓ Theme set to %s\n", u.View.Theme)

	default:
		theme, err := models.ParseTheme(arg)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		if err := r.themes.SaveTheme(theme); err != nil {
			return fmt.Errorf("failed to save theme: %w", err)
		}
		return r.writePlain("✓ Theme set to %s\n", theme)
	}
}
