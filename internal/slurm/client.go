package slurm

import (
	"context"
	"time"

	"slurmmcp/internal/history"
	"slurmmcp/internal/logger"
	"slurmmcp/internal/ssh"

	"github.com/google/uuid"
)

// Executor runs a command line on the cluster login node and captures its
// output. *ssh.Service is the production implementation.
type Executor interface {
	Execute(ctx context.Context, command string) (*ssh.CommandResult, error)
}

// Result is the outcome of one SLURM operation
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
}

// Client translates SLURM operations into remote command lines and runs
// them through the executor. The history repository is optional; when nil
// nothing is recorded.
type Client struct {
	executor Executor
	history  *history.Repository
	timeout  time.Duration
}

func NewClient(executor Executor, historyRepository *history.Repository, timeout time.Duration) *Client {
	return &Client{
		executor: executor,
		history:  historyRepository,
		timeout:  timeout,
	}
}

func (c *Client) run(ctx context.Context, tool string, argv []string) (*Result, error) {
	command := JoinCommand(argv)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	callID := uuid.NewString()
	logger.Debug("[%s] %s: %s", callID, tool, command)

	started := time.Now()
	res, err := c.executor.Execute(ctx, command)
	elapsed := time.Since(started)

	if err != nil {
		c.record(tool, command, -1, elapsed)
		return nil, err
	}

	logger.Debug("[%s] %s: exit code %d in %s", callID, tool, res.ExitCode, elapsed)
	c.record(tool, command, res.ExitCode, elapsed)

	return &Result{
		Command:  command,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Success:  res.ExitCode == 0,
	}, nil
}

// record persists command metadata; a history failure never fails the call
func (c *Client) record(tool, command string, exitCode int, duration time.Duration) {
	if c.history == nil {
		return
	}
	if _, err := c.history.Create(tool, command, exitCode, duration); err != nil {
		logger.Warn("Failed to record command history: %v", err)
	}
}

func (c *Client) Squeue(ctx context.Context, opts SqueueOptions) (*Result, error) {
	argv, err := BuildSqueue(opts)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, "squeue", argv)
}

func (c *Client) Sinfo(ctx context.Context, opts SinfoOptions) (*Result, error) {
	argv, err := BuildSinfo(opts)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, "sinfo", argv)
}

func (c *Client) Sacct(ctx context.Context, opts SacctOptions) (*Result, error) {
	argv, err := BuildSacct(opts)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, "sacct", argv)
}

func (c *Client) ScontrolShowJob(ctx context.Context, jobID string) (*Result, error) {
	argv, err := BuildScontrolShowJob(jobID)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, "scontrol_show_job", argv)
}

func (c *Client) ScontrolShowNode(ctx context.Context, nodeName string) (*Result, error) {
	argv, err := BuildScontrolShowNode(nodeName)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, "scontrol_show_node", argv)
}

func (c *Client) Scancel(ctx context.Context, jobID string) (*Result, error) {
	argv, err := BuildScancel(jobID)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, "scancel", argv)
}
