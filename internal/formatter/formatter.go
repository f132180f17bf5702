// package formatter renders transcripts, history and profiles for the terminal and for export (plain text, Markdown, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vtx/internal/models"
)

// EmptyHistoryMessage is shown instead of an empty list.
const EmptyHistoryMessage = "No transcriptions yet. Start by uploading a video!"

// ExcerptLength is the number of runes kept by [Excerpt].
const ExcerptLength = 120

const dateLayout = "2006-01-02"

// DownloadFilename names a transcript download after now in UTC, e.g. transcript_2024-03-09T14-05-33.txt.
func DownloadFilename(now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05")
	return "transcript_" + strings.ReplaceAll(stamp, ":", "-") + ".txt"
}

// WriteDownload writes text unchanged to [DownloadFilename] inside dir and returns the path.
func WriteDownload(dir, text string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, DownloadFilename(now))
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// SaveBeside writes text to <base>_transcript.txt next to the media file at mediaPath.
func SaveBeside(mediaPath, text string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	path := filepath.Join(filepath.Dir(mediaPath), base+"_transcript.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// Excerpt collapses whitespace and truncates to [ExcerptLength] runes.
func Excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "..."
}

func formatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(dateLayout)
}

// HistoryToText renders history as numbered plain-text entries.
func HistoryToText(items []models.HistoryItem) ([]byte, error) {
	var buf bytes.Buffer
	if len(items) == 0 {
		buf.WriteString(EmptyHistoryMessage + "\n")
		return buf.Bytes(), nil
	}

	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s  %s  [%s]\n", i+1, item.Filename, formatDate(item.CreatedAt), item.LanguageLabel())
		fmt.Fprintf(&buf, "   %s\n", Excerpt(item.Transcript))
		if i < len(items)-1 {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// RenderHistory writes [HistoryToText] output to w.
func RenderHistory(items []models.HistoryItem, w io.Writer) error {
	data, err := HistoryToText(items)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// HistoryToMarkdown renders history with one section per transcription and its full text.
func HistoryToMarkdown(items []models.HistoryItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Transcription History\n\n")
	if len(items) == 0 {
		buf.WriteString(EmptyHistoryMessage + "\n")
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "**Transcriptions**: %d\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&buf, "## %s\n\n", item.Filename)
		fmt.Fprintf(&buf, "**Date**: %s | **Language**: %s\n\n", formatDate(item.CreatedAt), item.LanguageLabel())
		for _, line := range strings.Split(strings.TrimSpace(item.Transcript), "\n") {
			fmt.Fprintf(&buf, "> %s\n", line)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// HistoryToCSV converts history to CSV with columns: Filename, Date, Language, Transcript
func HistoryToCSV(items []models.HistoryItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Filename", "Date", "Language", "Transcript"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{item.Filename, formatDate(item.CreatedAt), item.LanguageLabel(), item.Transcript}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryFormat selects a history renderer by name: text, markdown (md) or csv.
func HistoryFormat(name string) (func([]models.HistoryItem) ([]byte, error), error) {
	switch strings.ToLower(name) {
	case "", "text", "txt":
		return HistoryToText, nil
	case "markdown", "md":
		return HistoryToMarkdown, nil
	case "csv":
		return HistoryToCSV, nil
	default:
		return nil, fmt.Errorf("unknown history format %q", name)
	}
}

// RenderProfile renders the profile card.
func RenderProfile(p *models.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username:       %s\n", p.Username)
	fmt.Fprintf(&b, "Email:          %s\n", p.Email)
	fmt.Fprintf(&b, "Member since:   %s\n", formatDate(p.MemberSince))
	fmt.Fprintf(&b, "Transcriptions: %s\n", strconv.Itoa(p.TotalTranscriptions))
	return b.String()
}
