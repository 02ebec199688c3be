package commands

import (
	"slurmmcp/internal/mcpserver"
	"slurmmcp/version"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start the MCP server on stdin/stdout, exposing the SLURM tools:

  squeue                 job queue
  sinfo                  partition and node states
  sacct                  job accounting
  scontrol_show_job      detailed job info
  scontrol_show_node     detailed node info
  scancel                cancel a job
  get_connection_status  SSH connection state
  disconnect             close the SSH connection

The SSH connection to the login node is opened lazily on the first command
and reused until disconnect or process exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		defer func() {
			if err := sshService.Disconnect(); err != nil {
				cmd.PrintErrf("Failed to close SSH connection: %v\n", err)
			}
		}()

		server := mcpserver.New(version.Version, slurmClient, sshService)
		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}
