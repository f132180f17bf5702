package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/media"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/session"
	"github.com/desertthunder/vtx/internal/shared"
)

// DefaultRateLimit is the default number of submissions per second.
const DefaultRateLimit = 1.0

// BatchOpts configures a batch run.
type BatchOpts struct {
	RateLimit  float64 // Submissions per second (default: 1)
	SaveBeside bool    // Write <base>_transcript.txt next to each source
}

// FileResult is the outcome for one input path.
type FileResult struct {
	Path       string
	File       *models.SelectedFile
	Transcript *models.Transcript
	SavedTo    string
	Error      error
	Elapsed    time.Duration
}

// Success reports whether a transcript was produced.
func (r FileResult) Success() bool {
	return r.Error == nil && r.Transcript != nil
}

// BatchResult summarises a batch run.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []FileResult
}

// BatchEngine drives a dispatcher through a list of files.
type BatchEngine struct {
	dispatcher *session.Dispatcher
	logger     *log.Logger
}

// NewBatchEngine creates an engine around a running dispatcher.
func NewBatchEngine(d *session.Dispatcher, logger *log.Logger) *BatchEngine {
	return &BatchEngine{dispatcher: d, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *BatchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run transcribes paths in order. Per-file failures are recorded and the batch moves on; only cancellation stops
// it early.
func (e *BatchEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, paths []string, opts BatchOpts) (*BatchResult, error) {
	if e.dispatcher == nil {
		return nil, fmt.Errorf("%w: dispatcher not initialized", shared.ErrServiceUnavailable)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", shared.ErrMissingArgument)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	result := &BatchResult{Total: len(paths), Results: make([]FileResult, 0, len(paths))}

	for i, path := range paths {
		step := i + 1
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		res := e.transcribeOne(ctx, prog, step, len(paths), path, opts)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		result.Results = append(result.Results, res)
		if res.Success() {
			result.Succeeded++
			e.sendProgress(prog, completedUpdate(step, len(paths), res))
		} else {
			result.Failed++
			e.sendProgress(prog, failedUpdate(step, len(paths), res))
		}
	}
	return result, nil
}

func (e *BatchEngine) transcribeOne(ctx context.Context, prog chan<- ProgressUpdate, step, total int, path string, opts BatchOpts) (res FileResult) {
	start := time.Now()
	res.Path = path
	defer func() { res.Elapsed = time.Since(start) }()

	e.sendProgress(prog, selectFileUpdate(step, total, path))
	file, err := media.Select(path)
	if err != nil {
		res.Error = err
		return res
	}
	res.File = file

	if _, err := e.dispatcher.Dispatch(ctx, session.FileSelected{File: file}, func(v session.View) bool {
		return v.File != nil && v.File.Path == file.Path
	}); err != nil {
		res.Error = err
		return res
	}

	e.sendProgress(prog, uploadUpdate(step, total, file))
	before := e.dispatcher.Controller().Snapshot().Transcriptions
	v, err := e.dispatcher.Dispatch(ctx, session.SubmitRequested{}, func(v session.View) bool {
		return v.Transcriptions > before
	})
	if err != nil {
		res.Error = err
		return res
	}

	if v.LastOutcome != session.Succeeded {
		res.Error = errors.New(strings.TrimSpace(v.ResultText))
		if e.logger != nil {
			e.logger.Warn("batch item failed", "file", file.Name, "error", res.Error)
		}
		return res
	}
	res.Transcript = e.dispatcher.Controller().Transcript()

	if opts.SaveBeside {
		saved, err := formatter.SaveBeside(file.Path, res.Transcript.Text)
		if err != nil {
			res.Error = err
			return res
		}
		res.SavedTo = saved
		e.sendProgress(prog, savedUpdate(step, total, saved))
	}
	return res
}
