package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Transcript is the successful result of a transcription request.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// LanguageLabel returns the detected language code uppercased for display.
func (t Transcript) LanguageLabel() string {
	return strings.ToUpper(t.Language)
}

// SessionUser is the authenticated account as reported by the server. It is never mutated locally.
type SessionUser struct {
	ID                  int64     `json:"id,omitempty"`
	Username            string    `json:"username"`
	Email               string    `json:"email,omitempty"`
	MemberSince         Timestamp `json:"member_since,omitzero"`
	TotalTranscriptions int       `json:"total_transcriptions,omitempty"`
}

// Profile is the /api/profile payload.
type Profile struct {
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	MemberSince         Timestamp `json:"member_since"`
	TotalTranscriptions int       `json:"total_transcriptions"`
}

// HistoryItem is a single past transcription.
type HistoryItem struct {
	Filename   string    `json:"filename"`
	Transcript string    `json:"transcript"`
	Language   string    `json:"language"`
	CreatedAt  Timestamp `json:"created_at"`
}

// LanguageLabel returns the language code uppercased for display.
func (h HistoryItem) LanguageLabel() string {
	return strings.ToUpper(h.Language)
}

// Timestamp decodes the date formats the service may emit: RFC 3339, naive ISO 8601 and HTTP dates.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses s with each supported layout in turn.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// UnmarshalJSON accepts a date string in any supported layout or a number of unix seconds. Anything else decodes to
// the zero value so one odd date never fails the enclosing payload.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch v := v.(type) {
	case float64:
		*t = Timestamp{time.Unix(int64(v), 0).UTC()}
	case string:
		if parsed, err := ParseTimestamp(v); err == nil {
			*t = parsed
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// DateString renders the date portion, or an empty string for the zero value.
func (t Timestamp) DateString() string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}
