package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
)

var analyzeFlags hintFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript files...>",
	Short: "Generate reports from transcript text files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.title, "title", "", "Meeting title hint")
	f.StringSliceVar(&analyzeFlags.attendees, "attendees", nil, "Attendee names hint")
	f.StringVar(&analyzeFlags.meetingID, "meeting-id", "", "Meeting id (single file only; defaults to the file name)")
	f.IntVarP(&analyzeFlags.concurrency, "concurrency", "c", 0, "Parallel runs (defaults to PIPELINE_CONCURRENCY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	limit := analyzeFlags.concurrency
	if limit <= 0 {
		limit = a.Config.Pipeline.Concurrency
	}

	ids := batchMeetingIDs(analyzeFlags.meetingID, args)
	outcomes := runBatch(ctx, args, limit, func(ctx context.Context, i int, source string) (*reportuc.Result, error) {
		text, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		return a.Service.ProcessTranscript(ctx, reportuc.TranscriptRequest{
			MeetingID:  ids[i],
			Transcript: string(text),
			Title:      analyzeFlags.title,
			Attendees:  analyzeFlags.attendees,
		})
	})
	return printOutcomes(cmd.OutOrStdout(), outcomes)
}
