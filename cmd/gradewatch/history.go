package main

import (
	"github.com/spf13/cobra"
	"gradewatch/pkg/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect reported grades",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every grade already reported, in discovery order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false, nil)
		if err != nil {
			return err
		}

		records := a.history.Load()
		if len(records) == 0 {
			ui.PrintInfo("No grades reported yet", a.history.Path())
			return nil
		}
		ui.RenderHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
}
