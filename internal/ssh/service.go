package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"slurmmcp/internal/logger"

	"github.com/melbahja/goph"
	"golang.org/x/crypto/ssh"
)

// Service owns the single SSH session to the cluster login node. All
// operations are serialized through one mutex: one session cannot safely
// multiplex unrelated shell commands, so callers queue up behind each other.
type Service struct {
	mu     sync.Mutex
	client *goph.Client
	creds  *Credentials
}

func NewService(creds *Credentials) *Service {
	return &Service{creds: creds}
}

// Validate checks that the credentials can be used to open a connection
func (c *Credentials) Validate() error {
	if c.Host == "" {
		return ErrMissingHost
	}
	if c.Username == "" {
		return ErrMissingUsername
	}
	if c.PrivateKeyPath == "" && c.Password == "" {
		return ErrNoAuthMethodProvided
	}
	return nil
}

// AuthMethods resolves the configured credentials into SSH auth methods.
// A private key path wins over a password when both are set.
func (c *Credentials) AuthMethods() ([]ssh.AuthMethod, error) {
	if c.PrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToCreateAuth, err)
		}

		var signer ssh.Signer
		if c.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(c.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToCreateAuth, err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	if c.Password != "" {
		return []ssh.AuthMethod{ssh.Password(c.Password)}, nil
	}

	return nil, ErrNoAuthMethodProvided
}

// EnsureConnected opens the session if there is none; no-op when already live
func (s *Service) EnsureConnected() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensureConnectedLocked()
}

func (s *Service) ensureConnectedLocked() error {
	if s.client != nil {
		return nil
	}

	if err := s.creds.Validate(); err != nil {
		return err
	}

	authMethods, err := s.creds.AuthMethods()
	if err != nil {
		return err
	}

	// Host keys are accepted automatically (trust-on-first-use); the login
	// node is provisioned out-of-band and there is no known-hosts store.
	sshConfig := &ssh.ClientConfig{
		User:            s.creds.Username,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	hostPort := net.JoinHostPort(s.creds.Host, fmt.Sprintf("%d", s.creds.Port))

	conn, err := net.DialTimeout("tcp", hostPort, sshConfig.Timeout)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateSSHClient, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, hostPort, sshConfig)

	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrFailedToCreateSSHClient, err)
	}

	client := ssh.NewClient(sshConn, chans, reqs)

	session, err := client.NewSession()

	if err != nil {
		client.Close()
		return fmt.Errorf("%w: %v", ErrFailedToTestSSHConnection, err)
	}

	defer session.Close()

	err = session.Run("echo 'connection test'")

	if err != nil {
		client.Close()
		return fmt.Errorf("%w: %v", ErrFailedToTestSSHConnection, err)
	}

	s.client = &goph.Client{Client: client}

	logger.Info("Connected to %s@%s", s.creds.Username, hostPort)
	return nil
}

// Execute runs command on the remote host, connecting first if needed. The
// context deadline bounds the remote execution; on expiry the session is
// torn down, since a session with a command still running on it cannot be
// reused, and the next call reconnects.
func (s *Service) Execute(ctx context.Context, command string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnectedLocked(); err != nil {
		return nil, err
	}

	cmd, err := s.client.Command(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToExecuteCommand, err)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- cmd.Run()
	}()

	select {
	case <-ctx.Done():
		// Closing the client unblocks the Run goroutine.
		s.closeLocked()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s", ErrCommandTimeout, command)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToExecuteCommand, ctx.Err())
	case err = <-done:
	}

	result := &CommandResult{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			// Transport-level failure mid-command: drop the session so the
			// next call re-establishes it.
			s.closeLocked()
			return nil, fmt.Errorf("%w: %v", ErrFailedToExecuteCommand, err)
		}
	}

	return result, nil
}

// Status reports the current connection state without side effects
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Connected: s.client != nil,
		Host:      s.creds.Host,
		Username:  s.creds.Username,
		Port:      s.creds.Port,
	}
}

// Disconnect closes the session if one is open. Idempotent; subsequent
// commands reconnect on demand.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.client = nil

	logger.Info("Disconnected from %s", s.creds.Host)
	return err
}

func (s *Service) closeLocked() {
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}
