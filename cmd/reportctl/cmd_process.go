package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
)

var processFlags hintFlags

var processCmd = &cobra.Command{
	Use:   "process <audio files...>",
	Short: "Transcribe recordings and generate their reports",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.title, "title", "", "Meeting title hint")
	f.StringSliceVar(&processFlags.attendees, "attendees", nil, "Attendee names hint")
	f.StringVar(&processFlags.meetingID, "meeting-id", "", "Meeting id (single file only; defaults to the file name)")
	f.IntVarP(&processFlags.concurrency, "concurrency", "c", 0, "Parallel runs (defaults to PIPELINE_CONCURRENCY)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	limit := processFlags.concurrency
	if limit <= 0 {
		limit = a.Config.Pipeline.Concurrency
	}

	ids := batchMeetingIDs(processFlags.meetingID, args)
	outcomes := runBatch(ctx, args, limit, func(ctx context.Context, i int, source string) (*reportuc.Result, error) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()

		return a.Service.ProcessAudio(ctx, reportuc.AudioRequest{
			MeetingID: ids[i],
			Filename:  source,
			Audio:     f,
			Title:     processFlags.title,
			Attendees: processFlags.attendees,
		})
	})
	return printOutcomes(cmd.OutOrStdout(), outcomes)
}
