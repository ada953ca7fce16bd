package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sendFlags struct {
	to []string
}

var sendCmd = &cobra.Command{
	Use:   "send <meeting-id>",
	Short: "Email a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringSliceVar(&sendFlags.to, "to", nil, "Recipient email addresses (required)")
	_ = sendCmd.MarkFlagRequired("to")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.SendReport(ctx, args[0], sendFlags.to)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %d recipient(s) (status %d, message %s)\n",
		res.MeetingID, len(res.Recipients), res.StatusCode, res.MessageID)
	return nil
}
