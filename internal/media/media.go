package media

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

const sniffLen = 512

// mediaTypes covers hosts without a mime.types file.
var mediaTypes = map[string]string{
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "video/webm",
}

// Select stats path and builds the [models.SelectedFile] for it.
func Select(path string) (*models.SelectedFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, shared.ErrNoFileSelected
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, path)
	}

	mimeType, err := detectMIME(abs)
	if err != nil {
		return nil, err
	}

	return &models.SelectedFile{
		Name:     info.Name(),
		Path:     abs,
		Size:     info.Size(),
		MIMEType: mimeType,
	}, nil
}

// FileInfo renders the selection line shown under the picker, e.g. "talk.mp4 (12.34 MB)".
func FileInfo(file *models.SelectedFile) string {
	if file == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s MB)", file.Name, file.SizeMB())
}

func detectMIME(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := mediaTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return baseType(t), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return baseType(http.DetectContentType(buf[:n])), nil
}

// baseType drops parameters such as "; charset=utf-8".
func baseType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}
