package commands

import (
	"context"

	"slurmmcp/internal/ssh"

	"github.com/spf13/cobra"
)

var CheckSSHKeyPath = ""

var CheckCmd = &cobra.Command{
	Use:   "check [username@hostname[:port]]",
	Short: "Check SSH connectivity and SLURM availability on the login node",
	Long: `Open an SSH connection using the configured (or given) credentials and run
'sinfo --version' on the login node. Use this to verify the environment
before wiring the server into an MCP client.

If no username@hostname[:port] is provided, connection settings come from
the environment. A password is prompted for when no key file is configured.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		creds, err := buildSSHCredentials(cmd, args)

		if err != nil {
			cmd.PrintErrf("❌ Error: %v\n", err)
			return
		}

		service := ssh.NewService(creds)
		defer service.Disconnect()

		if err := service.EnsureConnected(); err != nil {
			cmd.PrintErrf("❌ SSH connection failed: %v\n", err)
			return
		}

		cmd.Printf("✅ SSH connection to %s@%s established\n", creds.Username, creds.Host)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CommandTimeout)
		defer cancel()

		result, err := service.Execute(ctx, "sinfo --version")

		if err != nil {
			cmd.PrintErrf("❌ Failed to run sinfo on the login node: %v\n", err)
			return
		}

		if result.ExitCode != 0 {
			cmd.PrintErrf("❌ sinfo returned exit code %d: %s\n", result.ExitCode, result.Stderr)
			return
		}

		cmd.Printf("✅ SLURM available: %s\n", result.Stdout)
	},
}

func init() {
	CheckCmd.Flags().StringVar(&CheckSSHKeyPath, "ssh-key-path", "", "Path to the SSH private key")
}
