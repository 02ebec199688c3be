package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"slurmmcp/internal/logger"
	"slurmmcp/internal/ssh"

	"github.com/joho/godotenv"
)

func init() {
	envFiles := []string{
		".env",
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Error loading %s: %v", envFile, err)
			}
		}
	}
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvPort(key string, defaultValue uint) uint {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseUint(value, 10, 16)
	if err != nil || parsed == 0 {
		logger.Warn("Invalid value for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}

	return uint(parsed)
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		logger.Warn("Invalid value for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

// Configuration holds the environment-sourced settings, loaded once at
// startup and passed by reference to the components that need it
type Configuration struct {
	SlurmHost           string
	SlurmUser           string
	SlurmPort           uint
	SlurmPassword       string
	SlurmKeyFile        string
	SlurmKeyPassphrase  string
	CommandTimeout      time.Duration
	HistoryDatabasePath string
}

func Load() *Configuration {
	cfg := &Configuration{
		SlurmHost:           GetEnv("SLURM_HOST", ""),
		SlurmUser:           GetEnv("SLURM_USER", os.Getenv("USER")),
		SlurmPort:           getEnvPort("SLURM_PORT", 22),
		SlurmPassword:       GetEnv("SLURM_PASSWORD", ""),
		SlurmKeyFile:        GetEnv("SLURM_KEY_FILE", ""),
		SlurmKeyPassphrase:  GetEnv("SLURM_KEY_PASSPHRASE", ""),
		CommandTimeout:      getEnvSeconds("SLURM_COMMAND_TIMEOUT", 30*time.Second),
		HistoryDatabasePath: GetEnv("SLURM_MCP_DB", ""),
	}

	// The default key path applies only when no password is set either: an
	// explicitly configured password wins over a key nobody asked for.
	if cfg.SlurmKeyFile == "" && cfg.SlurmPassword == "" {
		cfg.SlurmKeyFile = defaultKeyFile()
	}

	return cfg
}

func defaultKeyFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Could not determine home directory: %v", err)
		return ""
	}
	return filepath.Join(homeDir, ".ssh", "id_rsa")
}

// Credentials converts the configuration into SSH connection credentials
func (c *Configuration) Credentials() *ssh.Credentials {
	return &ssh.Credentials{
		Host:           c.SlurmHost,
		Port:           c.SlurmPort,
		Username:       c.SlurmUser,
		Password:       c.SlurmPassword,
		PrivateKeyPath: c.SlurmKeyFile,
		Passphrase:     c.SlurmKeyPassphrase,
	}
}
