package models

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// SelectedFile is the local media chosen for upload.
//
// It is referenced only for the duration of one request; the bytes are read from Path on demand.
type SelectedFile struct {
	Name     string
	Path     string
	Size     int64
	MIMEType string
}

// Open returns a reader over the raw bytes of the file.
func (f *SelectedFile) Open() (io.ReadCloser, error) {
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	return r, nil
}

// SizeMB returns the size in megabytes rounded to two decimals.
func (f *SelectedFile) SizeMB() string {
	return fmt.Sprintf("%.2f", float64(f.Size)/(1024*1024))
}

// IsVideo reports whether the MIME type is video/*.
func (f *SelectedFile) IsVideo() bool { return strings.HasPrefix(f.MIMEType, "video/") }

// IsAudio reports whether the MIME type is audio/*.
func (f *SelectedFile) IsAudio() bool { return strings.HasPrefix(f.MIMEType, "audio/") }
