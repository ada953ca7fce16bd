package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/meeting-reporter/internal/app"
	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

const maxMeetingIDLen = 128

// hintFlags are shared by analyze and process
type hintFlags struct {
	title       string
	attendees   []string
	meetingID   string
	concurrency int
}

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, logger)
}

// batchOutcome is the result of one independent run
type batchOutcome struct {
	Source string
	Result *reportuc.Result
	Err    error
}

// runBatch runs fn for every source with at most limit runs in flight. fn
// receives the source's position in the batch. Outcomes keep the order of
// sources; one failed run does not stop the others.
func runBatch(ctx context.Context, sources []string, limit int, fn func(ctx context.Context, i int, source string) (*reportuc.Result, error)) []batchOutcome {
	outcomes := make([]batchOutcome, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			res, err := fn(gctx, i, source)
			outcomes[i] = batchOutcome{Source: source, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait() // errors captured per outcome
	return outcomes
}

// printOutcomes writes one line per run and returns an error when any run failed
func printOutcomes(w io.Writer, outcomes []batchOutcome) error {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", o.Source, o.Err)
			continue
		}
		fmt.Fprintf(w, "OK   %s: %s (%s)\n", o.Source, o.Result.Location, o.Result.MeetingID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d run(s) failed", failed, len(outcomes))
	}
	return nil
}

// meetingIDForSource derives a meeting id from a file name. An explicit id
// only applies to a single input; otherwise every file gets its own.
func meetingIDForSource(explicit, source string, total int) string {
	if explicit != "" && total == 1 {
		return explicit
	}
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '-'
	}, stem)
	id = strings.TrimLeft(id, "._-")
	if len(id) > maxMeetingIDLen {
		id = id[:maxMeetingIDLen]
	}
	if reportuc.ValidateMeetingID(id) != nil {
		return ""
	}
	return id
}

// batchMeetingIDs assigns a meeting id to every source. Sources whose file
// names collide, such as a/standup.wav and b/standup.m4a, get -2, -3, ...
// suffixes so that no two runs of a batch write the same report. Empty ids
// are left for the service to generate.
func batchMeetingIDs(explicit string, sources []string) []string {
	ids := make([]string, len(sources))
	taken := map[string]bool{}
	for i, source := range sources {
		ids[i] = meetingIDForSource(explicit, source, len(sources))
		if ids[i] != "" {
			taken[ids[i]] = true
		}
	}

	seen := map[string]bool{}
	for i, id := range ids {
		if id == "" {
			continue
		}
		if !seen[id] {
			seen[id] = true
			continue
		}
		for n := 2; ; n++ {
			suffix := fmt.Sprintf("-%d", n)
			base := id
			if len(base)+len(suffix) > maxMeetingIDLen {
				base = base[:maxMeetingIDLen-len(suffix)]
			}
			candidate := base + suffix
			if !taken[candidate] {
				ids[i] = candidate
				taken[candidate] = true
				seen[candidate] = true
				break
			}
		}
	}
	return ids
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
