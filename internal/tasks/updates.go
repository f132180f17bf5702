package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/desertthunder/vtx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SelectFile Phase = iota
	Upload
	Save
	Complete
	Failure
)

func (p Phase) String() string {
	switch p {
	case SelectFile:
		return "select_file"
	case Upload:
		return "upload"
	case Save:
		return "save"
	case Complete:
		return "complete"
	case Failure:
		return "failure"
	default:
		return ""
	}
}

func selectFileUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %s...", step, total, filepath.Base(path)),
	}
}

func uploadUpdate(step, total int, file *models.SelectedFile) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Transcribing %s (%s MB)...", step, total, file.Name, file.SizeMB()),
		Data:    file,
	}
}

func savedUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Save,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Saved %s", step, total, path),
	}
}

func completedUpdate(step, total int, res FileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s [%s]", step, total, filepath.Base(res.Path), res.Transcript.LanguageLabel()),
		Data:    res,
	}
}

func failedUpdate(step, total int, res FileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failure,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(res.Path), res.Error),
		Data:    res,
	}
}
