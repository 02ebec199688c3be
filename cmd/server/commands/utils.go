package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"

	"slurmmcp/internal/ssh"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPasswordSecurely reads a password from the terminal without echoing
func readPasswordSecurely(prompt string, out io.Writer) (string, error) {
	fmt.Fprintf(out, "%s", prompt)

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))

	fmt.Fprintf(out, "\n")

	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

// parseSSHTarget parses an SSH target in the format username@hostname:port or
// username@hostname. Returns username, hostname, port, and any error.
func parseSSHTarget(target string) (username, hostname string, port uint, err error) {
	// Default port
	port = 22

	// Check if the target contains a port
	if strings.Contains(target, ":") {
		parts := strings.Split(target, ":")
		if len(parts) != 2 {
			return "", "", 0, fmt.Errorf("invalid SSH target format: %s", target)
		}

		// Parse port
		if portStr := parts[1]; portStr != "" {
			parsedPort, err := strconv.ParseUint(portStr, 10, 32)

			if err != nil {
				return "", "", 0, fmt.Errorf("invalid port number: %s", portStr)
			}

			if parsedPort > 65535 {
				return "", "", 0, fmt.Errorf("port number must be between 0 and 65535")
			}

			port = uint(parsedPort)
		}

		target = parts[0]
	}

	// Parse username@hostname
	if strings.Contains(target, "@") {
		parts := strings.Split(target, "@")
		if len(parts) != 2 {
			return "", "", 0, fmt.Errorf("invalid SSH target format: %s", target)
		}
		username = parts[0]
		hostname = parts[1]
	} else {
		return "", "", 0, fmt.Errorf("username is required in SSH target format: username@hostname[:port]")
	}

	if username == "" {
		return "", "", 0, fmt.Errorf("username cannot be empty")
	}
	if hostname == "" {
		return "", "", 0, fmt.Errorf("hostname cannot be empty")
	}

	return username, hostname, port, nil
}

// buildSSHCredentials assembles credentials from the positional target (when
// given) on top of the environment configuration, prompting for a password
// when neither a key file nor a password is available.
func buildSSHCredentials(cmd *cobra.Command, args []string) (*ssh.Credentials, error) {
	creds := cfg.Credentials()

	if len(args) > 0 {
		username, hostname, port, err := parseSSHTarget(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH target '%s': %v", args[0], err)
		}
		creds.Username = username
		creds.Host = hostname
		creds.Port = port
	}

	if keyPath := cmd.Flag("ssh-key-path").Value.String(); keyPath != "" {
		creds.PrivateKeyPath = keyPath
		creds.Password = ""
	}

	if creds.Host == "" {
		return nil, fmt.Errorf("SSH host is required; set SLURM_HOST or pass username@hostname[:port]")
	}
	if creds.Username == "" {
		return nil, fmt.Errorf("SSH username is required; set SLURM_USER or pass username@hostname[:port]")
	}

	if creds.PrivateKeyPath == "" && creds.Password == "" {
		password, err := readPasswordSecurely("🔒 Enter SSH password: ", cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %v", err)
		}
		creds.Password = password
	}

	if creds.PrivateKeyPath == "" && creds.Password == "" {
		return nil, ssh.ErrNoAuthMethodProvided
	}

	return creds, nil
}
