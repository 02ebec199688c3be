package commands

import (
	"github.com/spf13/cobra"
)

var HistoryLimit = 20

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed SLURM commands",
	Long: `List the most recent commands executed through the server, newest first.

Requires a history database (set SLURM_MCP_DB). Only command metadata is
recorded: the command line, exit code and duration, never its output.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if historyRepository == nil {
			cmd.PrintErrf("❌ Command history is disabled; set SLURM_MCP_DB to enable it\n")
			return
		}

		records, err := historyRepository.Recent(HistoryLimit)

		if err != nil {
			cmd.PrintErrf("❌ Failed to read history: %v\n", err)
			return
		}

		if len(records) == 0 {
			cmd.Println("No commands recorded yet")
			return
		}

		for _, record := range records {
			cmd.Printf("%s  %-20s exit=%-3d %6dms  %s\n",
				record.CreatedAt.Format("2006-01-02 15:04:05"),
				record.Tool,
				record.ExitCode,
				record.DurationMs,
				record.Command)
		}
	},
}

func init() {
	HistoryCmd.Flags().IntVarP(&HistoryLimit, "limit", "n", 20, "Maximum number of records to show")
}
