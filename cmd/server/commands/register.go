package commands

import (
	"slurmmcp/cmd/server/config"
	"slurmmcp/internal/history"
	"slurmmcp/internal/slurm"
	"slurmmcp/internal/ssh"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg               *config.Configuration
	sshService        *ssh.Service
	historyRepository *history.Repository
	slurmClient       *slurm.Client
)

func RegisterCommands(rootCmd *cobra.Command, configuration *config.Configuration, db *gorm.DB) {
	cfg = configuration

	if db != nil {
		historyRepository = history.NewRepository(db)
	}

	sshService = ssh.NewService(cfg.Credentials())
	slurmClient = slurm.NewClient(sshService, historyRepository, cfg.CommandTimeout)

	rootCmd.AddCommand(ServeCmd)
	rootCmd.AddCommand(CheckCmd)
	rootCmd.AddCommand(HistoryCmd)
}
