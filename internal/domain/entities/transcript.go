package entities

import (
	"fmt"
	"strings"
)

// Utterance is a contiguous stretch of speech from one speaker
type Utterance struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   int64   `json:"start"` // milliseconds
	End     int64   `json:"end"`   // milliseconds
	Score   float64 `json:"confidence,omitempty"`
}

// Transcript is the text returned by the transcription service
type Transcript struct {
	ID         string      `json:"id,omitempty"`
	Text       string      `json:"text"`
	Utterances []Utterance `json:"utterances,omitempty"`
	Language   string      `json:"language,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	DurationMs int64       `json:"duration_ms,omitempty"`
}

// Content returns the text fed to analysis. With speaker labels every
// utterance becomes one "Speaker X: text" line, otherwise the plain text.
func (t *Transcript) Content() string {
	if t == nil {
		return ""
	}
	if len(t.Utterances) == 0 {
		return strings.TrimSpace(t.Text)
	}

	lines := make([]string, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("Speaker %s: %s", u.Speaker, text))
	}
	return strings.Join(lines, "\n")
}

// IsEmpty reports whether the transcript carries no speech
func (t *Transcript) IsEmpty() bool {
	return strings.TrimSpace(t.Content()) == ""
}
