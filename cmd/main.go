package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/clipboard"
	"github.com/desertthunder/vtx/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Clipboard:  clipboard.Default(os.Stdout),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:    "vtx",
		Usage:   "Transcribe audio and video files with a remote transcription service",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("VTX_CONFIG"),
			},
		},
		Before:   runner.Bootstrap,
		After:    runner.Close,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not signed in, run `vtx auth login` first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
