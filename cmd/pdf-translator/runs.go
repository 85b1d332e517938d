package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdf-translator/internal/results"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage past translation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past translation runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := results.NewManager("")
		if err != nil {
			return err
		}
		runs, err := mgr.List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%s  %-8s  %s -> %s  %s\n",
				run.StartedAt.Format("2006-01-02 15:04"),
				run.Status, run.SourceLang, run.TargetLang, run.SourcePDF)
			if run.Status == results.StatusComplete {
				fmt.Printf("  %s (%d/%d blocks rendered)\n",
					run.OutputPDF, run.RenderedCount, run.TotalBlocks)
			} else if run.ErrorMessage != "" {
				fmt.Printf("  error: %s\n", run.ErrorMessage)
			}
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := results.NewManager("")
		if err != nil {
			return err
		}
		return mgr.Delete(args[0])
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}
