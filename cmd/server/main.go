package main

import (
	"fmt"
	"slurmmcp/cmd/server/commands"
	"slurmmcp/cmd/server/config"
	"slurmmcp/internal/database"
	"slurmmcp/version"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "slurmmcp",
	Short: "MCP server exposing SLURM cluster commands over SSH",
	Long: `slurmmcp bridges an MCP client (Claude Code, Cursor, or any MCP-capable
agent environment) to a SLURM cluster. Tool calls are translated into the
standard SLURM command-line utilities (squeue, sinfo, sacct, scontrol,
scancel) and executed over a single SSH session to the cluster login node.
The session is opened lazily on the first command and reused until
disconnect or process exit.

Connection settings come from the environment (or a .env file):

  SLURM_HOST             login node hostname (required)
  SLURM_USER             SSH username (default: $USER)
  SLURM_PORT             SSH port (default: 22)
  SLURM_PASSWORD         password authentication
  SLURM_KEY_FILE         private key authentication (default: ~/.ssh/id_rsa
                         when no password is set; wins over the password
                         when both are set)
  SLURM_KEY_PASSPHRASE   passphrase for an encrypted private key
  SLURM_COMMAND_TIMEOUT  per-command timeout in seconds (default: 30)
  SLURM_MCP_DB           command history database path (empty: disabled)

Host keys of the login node are accepted automatically (trust-on-first-use);
point the server only at hosts you provisioned yourself.

Register in your agent's MCP settings:

  {
    "mcpServers": {
      "slurm": {
        "command": "slurmmcp",
        "args": ["serve"]
      }
    }
  }
`,
	Version: fmt.Sprintf("%s (commit: %s, date: %s)", version.Version, version.Commit, version.Date),
}

func main() {
	cfg := config.Load()

	var db *gorm.DB
	if cfg.HistoryDatabasePath != "" {
		var err error
		db, err = database.InitDB(cfg.HistoryDatabasePath)

		if err != nil {
			rootCmd.PrintErrf("Failed to initialize history database at %s: %v\n", cfg.HistoryDatabasePath, err)
		}
	}

	commands.RegisterCommands(rootCmd, cfg, db)

	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrf("%v\n", err)
	}

	if db != nil {
		if err := database.CloseDB(db); err != nil {
			rootCmd.PrintErrf("Failed to close history database: %v\n", err)
		}
	}
}
