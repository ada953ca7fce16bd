package main

import (
	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recently stored report",
	Args:  cobra.NoArgs,
	RunE:  runLatest,
}

func runLatest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := a.Service.LatestReport(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), stored)
}
