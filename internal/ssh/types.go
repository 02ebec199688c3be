package ssh

// Credentials represents the connection parameters for the cluster login node
type Credentials struct {
	Host     string
	Port     uint
	Username string
	// Password authentication
	Password string
	// Key-based authentication
	PrivateKeyPath string
	// Passphrase for private key (if encrypted)
	Passphrase string
}

// CommandResult carries the captured output of one remote command. A non-zero
// ExitCode is data, not an error: the caller decides what it means.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Status is a point-in-time snapshot of the connection state
type Status struct {
	Connected bool
	Host      string
	Username  string
	Port      uint
}
