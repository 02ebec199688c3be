package ssh

import "errors"

// Configuration errors
var (
	ErrMissingHost          = errors.New("SSH host is not configured")
	ErrMissingUsername      = errors.New("SSH username is not configured")
	ErrNoAuthMethodProvided = errors.New("no valid authentication method provided")
)

// Connection errors
var (
	ErrFailedToCreateAuth        = errors.New("failed to create auth")
	ErrFailedToCreateSSHClient   = errors.New("failed to create SSH client")
	ErrFailedToTestSSHConnection = errors.New("failed to test SSH connection")
)

// Execution errors
var (
	ErrFailedToExecuteCommand = errors.New("failed to execute remote command")
	ErrCommandTimeout         = errors.New("remote command timed out")
)
