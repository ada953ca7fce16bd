package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio file>",
	Short: "Print the speaker-labelled transcript of a recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	transcript, err := a.Service.Transcribe(ctx, args[0], f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), transcript.Content())
	return nil
}
