package slurm

import (
	"context"
	"errors"
	"testing"

	"slurmmcp/internal/database"
	"slurmmcp/internal/history"
	"slurmmcp/internal/ssh"
)

type fakeExecutor struct {
	commands []string
	result   *ssh.CommandResult
	err      error
}

func (f *fakeExecutor) Execute(_ context.Context, command string) (*ssh.CommandResult, error) {
	f.commands = append(f.commands, command)

	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestClientSqueue(t *testing.T) {
	fake := &fakeExecutor{result: &ssh.CommandResult{Stdout: "JOBID PARTITION NAME", ExitCode: 0}}
	client := NewClient(fake, nil, 0)

	result, err := client.Squeue(context.Background(), SqueueOptions{User: "alice"})

	if err != nil {
		t.Fatalf("Squeue failed: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success for exit code 0")
	}
	if result.Command != "squeue -u alice" {
		t.Errorf("unexpected command: %q", result.Command)
	}
	if result.Stdout != "JOBID PARTITION NAME" {
		t.Errorf("unexpected stdout: %q", result.Stdout)
	}
	if len(fake.commands) != 1 || fake.commands[0] != "squeue -u alice" {
		t.Errorf("unexpected executed commands: %v", fake.commands)
	}
}

func TestClientScancelMissingJobID(t *testing.T) {
	fake := &fakeExecutor{result: &ssh.CommandResult{}}
	client := NewClient(fake, nil, 0)

	_, err := client.Scancel(context.Background(), "")

	if !errors.Is(err, ErrMissingJobID) {
		t.Fatalf("expected ErrMissingJobID, got %v", err)
	}
	if len(fake.commands) != 0 {
		t.Errorf("no command should reach the executor on a validation error, got %v", fake.commands)
	}
}

func TestClientNonZeroExitIsNotAnError(t *testing.T) {
	fake := &fakeExecutor{result: &ssh.CommandResult{Stderr: "Invalid job id specified", ExitCode: 1}}
	client := NewClient(fake, nil, 0)

	result, err := client.ScontrolShowJob(context.Background(), "99999")

	if err != nil {
		t.Fatalf("ScontrolShowJob failed: %v", err)
	}

	if result.Success {
		t.Errorf("expected failure for exit code 1")
	}
	if result.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", result.ExitCode)
	}
	if result.Stderr != "Invalid job id specified" {
		t.Errorf("unexpected stderr: %q", result.Stderr)
	}
}

func TestClientTransportErrorPropagates(t *testing.T) {
	fake := &fakeExecutor{err: ssh.ErrFailedToExecuteCommand}
	client := NewClient(fake, nil, 0)

	_, err := client.Sinfo(context.Background(), SinfoOptions{})

	if !errors.Is(err, ssh.ErrFailedToExecuteCommand) {
		t.Fatalf("expected executor error to propagate, got %v", err)
	}
}

func TestClientRecordsHistory(t *testing.T) {
	db, err := database.InitDB(":memory:")

	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	defer database.CloseDB(db)

	repo := history.NewRepository(db)
	fake := &fakeExecutor{result: &ssh.CommandResult{Stdout: "ok", ExitCode: 0}}
	client := NewClient(fake, repo, 0)

	if _, err := client.Sinfo(context.Background(), SinfoOptions{Partition: "gpu"}); err != nil {
		t.Fatalf("Sinfo failed: %v", err)
	}

	records, err := repo.Recent(10)

	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}

	record := records[0]
	if record.Tool != "sinfo" {
		t.Errorf("expected tool sinfo, got %q", record.Tool)
	}
	if record.Command != "sinfo -p gpu" {
		t.Errorf("unexpected recorded command: %q", record.Command)
	}
	if record.ExitCode != 0 {
		t.Errorf("unexpected recorded exit code: %d", record.ExitCode)
	}
}
