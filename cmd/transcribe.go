package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/server"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tasks"
)

type transcribeOutput struct {
	File       string  `json:"file"`
	MIMEType   string  `json:"mime_type"`
	SizeMB     string  `json:"size_mb"`
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Download   string  `json:"download,omitempty"`
	SavedTo    string  `json:"saved_to,omitempty"`
	Copied     bool    `json:"copied,omitempty"`
	ElapsedSec float64 `json:"elapsed_sec"`
}

// Transcribe uploads one file and prints the transcript.
func (r *Runner) Transcribe(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrMissingArgument)
	}
	if err := r.requireClient(); err != nil {
		return err
	}

	file, err := media.Select(path)
	if err != nil {
		return err
	}

	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	if _, err := d.Dispatch(ctx, session.FileSelected{File: file}, func(v session.View) bool {
		return v.File != nil && v.File.Path == file.Path
	}); err != nil {
		return err
	}

	r.logger.Info("uploading", "file", file.Name, "mime", file.MIMEType, "size_mb", file.SizeMB())
	start := time.Now()
	before := d.Controller().Snapshot().Transcriptions
	v, err := r.request(ctx, d, session.SubmitRequested{},
		func(v session.View) bool { return v.State == session.Requesting },
		func(v session.View) bool { return v.Transcriptions > before },
	)
	if err != nil {
		return err
	}
	if v.LastOutcome != session.Succeeded {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, v.ResultText)
	}

	t := d.Controller().Transcript()
	if t == nil {
		return fmt.Errorf("%w: %s", shared.ErrNoTranscript, file.Name)
	}
	out := transcribeOutput{
		File:       file.Path,
		MIMEType:   file.MIMEType,
		SizeMB:     file.SizeMB(),
		Text:       t.Text,
		Language:   t.Language,
		ElapsedSec: time.Since(start).Seconds(),
	}

	if dir := cmd.String("output"); dir != "" {
		u, err := r.apply(ctx, d, session.DownloadRequested{Dir: dir})
		if err != nil {
			return err
		}
		if msg := firstError(u.Notifications); msg != "" {
			return errors.New(msg)
		}
		out.Download = u.View.LastDownload
	}

	if cmd.Bool("copy") {
		if _, err := r.apply(ctx, d, session.CopyRequested{}); err != nil {
			return err
		}
		out.Copied = true
	}

	if cmd.Bool("save-beside") {
		saved, err := formatter.SaveBeside(file.Path, t.Text)
		if err != nil {
			return err
		}
		out.SavedTo = saved
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s [%s]", file.Name, t.LanguageLabel()))
	r.writePlain("%s\n", out.Text)
	if out.Download != "" {
		r.writePlain("\n✓ Downloaded to %s\n", out.Download)
	}
	if out.SavedTo != "" {
		r.writePlain("✓ Saved to %s\n", out.SavedTo)
	}
	if out.Copied {
		r.writePlain("✓ %s\n", session.MsgCopied)
	}
	return nil
}

// Batch transcribes each argument in turn, printing progress as it goes.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file is required", shared.ErrMissingArgument)
	}
	if err := r.requireClient(); err != nil {
		return err
	}

	d, stop := r.startSession(ctx, r.sessionOptions())
	defer stop()

	jsonOut := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 16)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for u := range progress {
			if !jsonOut {
				r.writePlain("%s\n", u.Message)
			}
		}
	}()

	engine := tasks.NewBatchEngine(d, r.logger)
	result, err := engine.Run(ctx, progress, paths, tasks.BatchOpts{
		RateLimit:  cmd.Float("rate"),
		SaveBeside: cmd.Bool("save-beside"),
	})
	close(progress)
	<-printed
	if err != nil && result == nil {
		return err
	}

	if jsonOut {
		return r.writeJSON(batchJSON(result), true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Batch Summary")
	r.writePlain("Total:     %d\n", result.Total)
	r.writePlain("Succeeded: %d\n", result.Succeeded)
	r.writePlain("Failed:    %d\n", result.Failed)
	for _, res := range result.Results {
		if !res.Success() {
			r.writePlain("  ✗ %s: %v\n", res.Path, res.Error)
		}
	}

	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d files failed", shared.ErrAPIRequest, result.Failed, result.Total)
	}
	return nil
}

type batchFileJSON struct {
	Path     string `json:"path"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
	SavedTo  string `json:"saved_to,omitempty"`
	Error    string `json:"error,omitempty"`
}

func batchJSON(result *tasks.BatchResult) map[string]any {
	files := make([]batchFileJSON, 0, len(result.Results))
	for _, res := range result.Results {
		f := batchFileJSON{Path: res.Path, SavedTo: res.SavedTo}
		if res.Transcript != nil {
			f.Text, f.Language = res.Transcript.Text, res.Transcript.Language
		}
		if res.Error != nil {
			f.Error = res.Error.Error()
		}
		files = append(files, f)
	}
	return map[string]any{
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"files":     files,
	}
}

// Preview serves a media file on the local preview server until interrupted.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	file, err := media.Select(path)
	if err != nil {
		return err
	}

	srv := server.NewPreviewServer(r.config.Preview.Addr(), r.logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Shutdown()

	previewer := media.NewPreviewer(srv).WithLogger(r.logger)
	kind, err := previewer.Show(file)
	if err != nil {
		return err
	}
	if kind == media.PreviewNone {
		return fmt.Errorf("%w: %s (%s) has no audio or video preview", shared.ErrInvalidInput, file.Name, file.MIMEType)
	}
	defer previewer.Reset()

	r.writePlain("%s %s preview: %s\n", media.FileInfo(file), kind, previewer.URL())
	if cmd.Bool("open") {
		if err := previewer.Open(); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}
	r.writePlain("Press Ctrl+C to stop\n")

	select {
	case <-ctx.Done():
		return nil
	case err := <-srv.Errors():
		return err
	}
}
