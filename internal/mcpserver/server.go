// Package mcpserver exposes the SLURM cluster operations as MCP tools.
// Transport is provided by the caller; in production it is stdio, so all
// logging stays on stderr.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"slurmmcp/internal/logger"
	"slurmmcp/internal/slurm"
	"slurmmcp/internal/ssh"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "slurmmcp"

// Error kinds surfaced to the protocol layer
const (
	kindConfiguration = "configuration"
	kindConnection    = "connection"
	kindExecution     = "execution"
	kindValidation    = "validation"
)

// Server wires the SLURM client and the connection service into MCP tools
type Server struct {
	version string
	slurm   *slurm.Client
	conn    *ssh.Service
}

func New(version string, slurmClient *slurm.Client, connection *ssh.Service) *Server {
	return &Server{
		version: version,
		slurm:   slurmClient,
		conn:    connection,
	}
}

// Run serves tool calls until the transport closes or ctx is cancelled
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: s.version,
	}, nil)

	s.registerTools(server)

	logger.Info("Starting %s %s", serverName, s.version)
	return server.Run(ctx, transport)
}

// toolResponse is the payload shape of every tool result: a status plus
// either the captured output or a structured error with its kind.
type toolResponse struct {
	Status  string `json:"status"`
	Data    string `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Command string `json:"command,omitempty"`
}

func textResult(resp *toolResponse, isError bool) *mcp.CallToolResult {
	payload, err := json.Marshal(resp)
	if err != nil {
		payload = []byte(`{"status":"error","error":"failed to encode response"}`)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		IsError: isError,
	}
}

// errorKind maps an error chain onto the kind reported to the caller
func errorKind(err error) string {
	switch {
	case errors.Is(err, slurm.ErrMissingJobID),
		errors.Is(err, slurm.ErrInvalidArgument):
		return kindValidation
	case errors.Is(err, ssh.ErrMissingHost),
		errors.Is(err, ssh.ErrMissingUsername),
		errors.Is(err, ssh.ErrNoAuthMethodProvided),
		errors.Is(err, ssh.ErrFailedToCreateAuth):
		return kindConfiguration
	case errors.Is(err, ssh.ErrFailedToCreateSSHClient),
		errors.Is(err, ssh.ErrFailedToTestSSHConnection):
		return kindConnection
	default:
		return kindExecution
	}
}

// commandResult shapes a SLURM call outcome into a tool result. Errors are
// returned in-band; a failing tool call never kills the server.
func (s *Server) commandResult(tool string, res *slurm.Result, err error) *mcp.CallToolResult {
	if err != nil {
		logger.Error("%s failed: %v", tool, err)
		return textResult(&toolResponse{
			Status: "error",
			Error:  err.Error(),
			Kind:   errorKind(err),
		}, true)
	}

	if !res.Success {
		return textResult(&toolResponse{
			Status:  "error",
			Error:   res.Stderr,
			Kind:    kindExecution,
			Command: res.Command,
		}, true)
	}

	return textResult(&toolResponse{
		Status:  "success",
		Data:    res.Stdout,
		Command: res.Command,
	}, false)
}
