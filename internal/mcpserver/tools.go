package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"slurmmcp/internal/slurm"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SqueueArgs struct {
	User      string `json:"user,omitempty" jsonschema:"filter jobs by username"`
	JobID     string `json:"job_id,omitempty" jsonschema:"show a specific job by ID"`
	Partition string `json:"partition,omitempty" jsonschema:"filter jobs by partition name"`
	FormatStr string `json:"format_str,omitempty" jsonschema:"custom squeue output format string"`
}

type SinfoArgs struct {
	Partition string `json:"partition,omitempty" jsonschema:"show a specific partition"`
	Nodes     string `json:"nodes,omitempty" jsonschema:"show specific nodes (comma-separated, ranges allowed)"`
	FormatStr string `json:"format_str,omitempty" jsonschema:"custom sinfo output format string"`
}

type SacctArgs struct {
	JobID     string `json:"job_id,omitempty" jsonschema:"show accounting info for a specific job ID"`
	User      string `json:"user,omitempty" jsonschema:"filter jobs by username"`
	StartTime string `json:"start_time,omitempty" jsonschema:"query start time (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)"`
	EndTime   string `json:"end_time,omitempty" jsonschema:"query end time (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)"`
	FormatStr string `json:"format_str,omitempty" jsonschema:"custom sacct output format string"`
}

type ScontrolShowJobArgs struct {
	JobID string `json:"job_id" jsonschema:"job ID to show details for"`
}

type ScontrolShowNodeArgs struct {
	NodeName string `json:"node_name,omitempty" jsonschema:"node to show; all nodes when omitted"`
}

type ScancelArgs struct {
	JobID string `json:"job_id" jsonschema:"job ID to cancel"`
}

type NoArgs struct{}

func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "squeue",
		Description: "Query the SLURM job queue for running and pending jobs",
	}, s.handleSqueue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sinfo",
		Description: "Query SLURM cluster information: partitions and node states",
	}, s.handleSinfo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sacct",
		Description: "Query SLURM accounting information for current and past jobs",
	}, s.handleSacct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scontrol_show_job",
		Description: "Show detailed information about a specific SLURM job",
	}, s.handleScontrolShowJob)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scontrol_show_node",
		Description: "Show detailed information about SLURM nodes",
	}, s.handleScontrolShowNode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scancel",
		Description: "Cancel a SLURM job",
	}, s.handleScancel)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_connection_status",
		Description: "Report the state of the SSH connection to the cluster login node",
	}, s.handleConnectionStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "disconnect",
		Description: "Close the SSH connection; the next command reconnects on demand",
	}, s.handleDisconnect)
}

func (s *Server) handleSqueue(ctx context.Context, _ *mcp.CallToolRequest, args SqueueArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.slurm.Squeue(ctx, slurm.SqueueOptions{
		User:      args.User,
		JobID:     args.JobID,
		Partition: args.Partition,
		Format:    args.FormatStr,
	})
	return s.commandResult("squeue", res, err), nil, nil
}

func (s *Server) handleSinfo(ctx context.Context, _ *mcp.CallToolRequest, args SinfoArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.slurm.Sinfo(ctx, slurm.SinfoOptions{
		Partition: args.Partition,
		Nodes:     args.Nodes,
		Format:    args.FormatStr,
	})
	return s.commandResult("sinfo", res, err), nil, nil
}

func (s *Server) handleSacct(ctx context.Context, _ *mcp.CallToolRequest, args SacctArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.slurm.Sacct(ctx, slurm.SacctOptions{
		JobID:     args.JobID,
		User:      args.User,
		StartTime: args.StartTime,
		EndTime:   args.EndTime,
		Format:    args.FormatStr,
	})
	return s.commandResult("sacct", res, err), nil, nil
}

func (s *Server) handleScontrolShowJob(ctx context.Context, _ *mcp.CallToolRequest, args ScontrolShowJobArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.slurm.ScontrolShowJob(ctx, args.JobID)
	return s.commandResult("scontrol_show_job", res, err), nil, nil
}

func (s *Server) handleScontrolShowNode(ctx context.Context, _ *mcp.CallToolRequest, args ScontrolShowNodeArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.slurm.ScontrolShowNode(ctx, args.NodeName)
	return s.commandResult("scontrol_show_node", res, err), nil, nil
}

func (s *Server) handleScancel(ctx context.Context, _ *mcp.CallToolRequest, args ScancelArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.slurm.Scancel(ctx, args.JobID)
	if err != nil || !res.Success {
		return s.commandResult("scancel", res, err), nil, nil
	}

	return textResult(&toolResponse{
		Status:  "success",
		Message: fmt.Sprintf("Job %s cancelled", args.JobID),
		Command: res.Command,
	}, false), nil, nil
}

type connectionStatus struct {
	Status   string `json:"status"`
	Hostname string `json:"hostname"`
	Username string `json:"username"`
	Port     uint   `json:"port"`
}

// handleConnectionStatus is a pure read of the connection state; it never
// opens a connection as a side effect.
func (s *Server) handleConnectionStatus(_ context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	st := s.conn.Status()

	status := "disconnected"
	if st.Connected {
		status = "connected"
	}

	payload, err := json.Marshal(connectionStatus{
		Status:   status,
		Hostname: st.Host,
		Username: st.Username,
		Port:     st.Port,
	})
	if err != nil {
		return textResult(&toolResponse{Status: "error", Error: err.Error(), Kind: kindExecution}, true), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
	}, nil, nil
}

func (s *Server) handleDisconnect(_ context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	if err := s.conn.Disconnect(); err != nil {
		return textResult(&toolResponse{
			Status: "error",
			Error:  err.Error(),
			Kind:   kindConnection,
		}, true), nil, nil
	}

	return textResult(&toolResponse{
		Status:  "success",
		Message: "Disconnected from SLURM cluster",
	}, false), nil, nil
}
