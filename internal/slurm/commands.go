package slurm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
)

// identifierPattern covers the values SLURM itself accepts for job IDs,
// usernames, partition names, node expressions (including ranges like
// node[01-05] and comma-separated lists) and sacct timestamps. Anything
// outside it is rejected before a command line is ever built.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.,:@=+\[\]-]*$`)

func checkIdentifier(name, value string) error {
	if !identifierPattern.MatchString(value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidArgument, name, value)
	}
	return nil
}

type SqueueOptions struct {
	User      string
	JobID     string
	Partition string
	Format    string
}

// BuildSqueue returns the squeue argv. Flags appear in a stable order and
// only for options that are actually set.
func BuildSqueue(opts SqueueOptions) ([]string, error) {
	argv := []string{"squeue"}

	if opts.User != "" {
		if err := checkIdentifier("user", opts.User); err != nil {
			return nil, err
		}
		argv = append(argv, "-u", opts.User)
	}
	if opts.JobID != "" {
		if err := checkIdentifier("job_id", opts.JobID); err != nil {
			return nil, err
		}
		argv = append(argv, "-j", opts.JobID)
	}
	if opts.Partition != "" {
		if err := checkIdentifier("partition", opts.Partition); err != nil {
			return nil, err
		}
		argv = append(argv, "-p", opts.Partition)
	}
	if opts.Format != "" {
		// Format strings carry % directives and spaces; they are quoted as a
		// single argument at join time rather than validated.
		argv = append(argv, "-o", opts.Format)
	}

	return argv, nil
}

type SinfoOptions struct {
	Partition string
	Nodes     string
	Format    string
}

func BuildSinfo(opts SinfoOptions) ([]string, error) {
	argv := []string{"sinfo"}

	if opts.Partition != "" {
		if err := checkIdentifier("partition", opts.Partition); err != nil {
			return nil, err
		}
		argv = append(argv, "-p", opts.Partition)
	}
	if opts.Nodes != "" {
		if err := checkIdentifier("nodes", opts.Nodes); err != nil {
			return nil, err
		}
		argv = append(argv, "-n", opts.Nodes)
	}
	if opts.Format != "" {
		argv = append(argv, "-o", opts.Format)
	}

	return argv, nil
}

type SacctOptions struct {
	JobID     string
	User      string
	StartTime string
	EndTime   string
	Format    string
}

// BuildSacct returns the sacct argv. Time values are passed through as
// literal strings (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS); sacct does its own
// date parsing on the remote side.
func BuildSacct(opts SacctOptions) ([]string, error) {
	argv := []string{"sacct"}

	if opts.JobID != "" {
		if err := checkIdentifier("job_id", opts.JobID); err != nil {
			return nil, err
		}
		argv = append(argv, "-j", opts.JobID)
	}
	if opts.User != "" {
		if err := checkIdentifier("user", opts.User); err != nil {
			return nil, err
		}
		argv = append(argv, "-u", opts.User)
	}
	if opts.StartTime != "" {
		if err := checkIdentifier("start_time", opts.StartTime); err != nil {
			return nil, err
		}
		argv = append(argv, "-S", opts.StartTime)
	}
	if opts.EndTime != "" {
		if err := checkIdentifier("end_time", opts.EndTime); err != nil {
			return nil, err
		}
		argv = append(argv, "-E", opts.EndTime)
	}
	if opts.Format != "" {
		argv = append(argv, "-o", opts.Format)
	}

	return argv, nil
}

func BuildScontrolShowJob(jobID string) ([]string, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrMissingJobID
	}
	if err := checkIdentifier("job_id", jobID); err != nil {
		return nil, err
	}

	return []string{"scontrol", "show", "job", jobID}, nil
}

// BuildScontrolShowNode returns the scontrol argv; with no node name the
// command lists every node in the cluster.
func BuildScontrolShowNode(nodeName string) ([]string, error) {
	if nodeName == "" {
		return []string{"scontrol", "show", "node"}, nil
	}
	if err := checkIdentifier("node_name", nodeName); err != nil {
		return nil, err
	}

	return []string{"scontrol", "show", "node", nodeName}, nil
}

func BuildScancel(jobID string) ([]string, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrMissingJobID
	}
	if err := checkIdentifier("job_id", jobID); err != nil {
		return nil, err
	}

	return []string{"scancel", jobID}, nil
}

// JoinCommand renders an argv as a single remote command line. Every
// argument is quoted individually, so no parameter value can alter the
// argument boundaries seen by the remote shell.
func JoinCommand(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellescape.Quote(arg)
	}
	return strings.Join(quoted, " ")
}
