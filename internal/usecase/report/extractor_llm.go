package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-reporter/pkg/ai"
	"github.com/johnquangdev/meeting-reporter/pkg/runcontext"
)

const reportSystemPrompt = `You are a meeting analyst. Read the meeting transcript and return ONLY a JSON object with exactly these fields:

{
  "meeting_title": "short descriptive title",
  "date": "meeting date as stated, or today's date if not stated",
  "attendees": ["names of people who spoke or were mentioned as present"],
  "summary": "2-3 sentence summary of the meeting",
  "key_topics": ["3-5 main topics discussed"],
  "action_items": [
    {
      "task": "what must be done",
      "assignee": "person responsible, or null if nobody committed",
      "deadline": "deadline as stated, or null",
      "priority": "high | medium | low"
    }
  ],
  "decisions_made": ["decisions the group agreed on"]
}

Rules:
- Use the meeting title and attendees given in the context when present.
- Never invent assignees or deadlines. Use null when they are not stated.
- Keep the summary to 2-3 sentences and list 3-5 key topics.
- priority must be one of high, medium, low.
- Use empty arrays, never null, for lists with no entries.
- Output JSON only, no markdown and no commentary.`

// ChatCompleter is the chat completion capability the LLM extractor needs
type ChatCompleter interface {
	Complete(ctx context.Context, messages []pkgai.Message, jsonMode bool) (string, error)
}

// LLMExtractor asks a chat model for the report and validates its answer
type LLMExtractor struct {
	client          ChatCompleter
	maxAttempts     int
	initialInterval time.Duration
	logger          *zap.Logger
}

// LLMOption customises an LLMExtractor
type LLMOption func(*LLMExtractor)

// WithInitialInterval sets the first backoff delay between attempts
func WithInitialInterval(d time.Duration) LLMOption {
	return func(e *LLMExtractor) {
		e.initialInterval = d
	}
}

// NewLLMExtractor creates an extractor that tries up to maxAttempts times
func NewLLMExtractor(client ChatCompleter, maxAttempts int, logger *zap.Logger, opts ...LLMOption) *LLMExtractor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &LLMExtractor{
		client:          client,
		maxAttempts:     maxAttempts,
		initialInterval: time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements Extractor
func (e *LLMExtractor) Extract(ctx context.Context, req ExtractionRequest) (entities.MeetingReport, error) {
	messages := []pkgai.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: req.Text},
	}

	var (
		report  entities.MeetingReport
		attempt int
	)
	extractFn := func() error {
		attempt++
		raw, err := e.client.Complete(ctx, messages, true)
		if err != nil {
			if !runcontext.IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			e.logger.Warn("⚠️ Chat completion failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}

		parsed, err := entities.ParseMeetingReport([]byte(extractJSON(raw)))
		if err != nil {
			e.logger.Warn("⚠️ Model output rejected",
				zap.Int("attempt", attempt),
				zap.String("raw_response", raw[:min(500, len(raw))]),
				zap.Error(err),
			)
			return err
		}
		report = applyHints(parsed, req.Hints)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.initialInterval
	bo.MaxInterval = 10 * e.initialInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.maxAttempts-1)), ctx)
	if err := backoff.Retry(extractFn, policy); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		e.logger.Error("❌ Report extraction failed",
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return entities.MeetingReport{}, fmt.Errorf("extraction failed after %d attempt(s): %w", attempt, err)
	}

	e.logger.Info("🤖 Report extracted by model", zap.Int("attempts", attempt))
	return report, nil
}

// applyHints overrides inferred values with the caller's hints
func applyHints(report entities.MeetingReport, hints Hints) entities.MeetingReport {
	if hints.Title != "" {
		report.MeetingTitle = hints.Title
	}
	if len(hints.Attendees) > 0 {
		report.Attendees = append([]string(nil), hints.Attendees...)
	}
	return report
}
