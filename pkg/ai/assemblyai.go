package ai

import (
	"context"
	"fmt"
	"io"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

// AssemblyAIClient transcribes audio with the official AssemblyAI SDK
type AssemblyAIClient struct {
	client        *aai.Client
	speakerLabels bool
	languageCode  string
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
func NewAssemblyAIClient(cfg *config.AssemblyConfig) *AssemblyAIClient {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}

	return &AssemblyAIClient{
		client:        aai.NewClientWithOptions(opts...),
		speakerLabels: cfg.SpeakerLabels,
		languageCode:  cfg.LanguageCode,
	}
}

// Transcribe uploads the audio, waits for the transcript and returns it.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio io.Reader) (*entities.Transcript, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(c.speakerLabels),
	}
	if c.languageCode != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(c.languageCode)
	} else {
		params.LanguageDetection = aai.Bool(true)
	}

	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, audio, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai request failed: %w", err)
	}

	return ToTranscript(transcript)
}

// ToTranscript converts an SDK transcript into the domain transcript
func ToTranscript(t aai.Transcript) (*entities.Transcript, error) {
	switch t.Status {
	case aai.TranscriptStatusCompleted:
	case aai.TranscriptStatusError:
		msg := "unknown error"
		if t.Error != nil {
			msg = *t.Error
		}
		return nil, fmt.Errorf("assemblyai transcription error: %s", msg)
	default:
		return nil, fmt.Errorf("assemblyai transcript not completed: status %s", t.Status)
	}

	out := &entities.Transcript{
		ID:         deref(t.ID),
		Text:       deref(t.Text),
		Language:   string(t.LanguageCode),
		Confidence: deref(t.Confidence),
		DurationMs: int64(deref(t.AudioDuration)) * 1000,
	}

	if len(t.Utterances) > 0 {
		out.Utterances = make([]entities.Utterance, 0, len(t.Utterances))
		for _, u := range t.Utterances {
			out.Utterances = append(out.Utterances, entities.Utterance{
				Speaker: deref(u.Speaker),
				Text:    deref(u.Text),
				Start:   int64(deref(u.Start)),
				End:     int64(deref(u.End)),
				Score:   deref(u.Confidence),
			})
		}
	}

	return out, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
