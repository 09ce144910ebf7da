package diagnostics

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sysmetryd/internal/model"
)

// Server exposes an Agent's tool surface over MCP (stdio transport),
// adapted from the teacher's internal/mcpserver.Server down to the two
// tools SPEC_FULL.md names for the diagnostics component:
// explain_incident and query_recent.
type Server struct {
	agent     *Agent
	mcpServer *mcp.Server
}

// ExplainIncidentArgs is the input for explain_incident.
type ExplainIncidentArgs struct {
	Question string `json:"question" jsonschema:"the question to ask about recent system health"`
}

// ExplainIncidentResult is the output for explain_incident.
type ExplainIncidentResult struct {
	Answer string `json:"answer" jsonschema:"natural-language explanation"`
}

// QueryRecentArgs is the input for query_recent.
type QueryRecentArgs struct {
	FromMS int64 `json:"from_ms" jsonschema:"start of the time range, in epoch milliseconds"`
	ToMS   int64 `json:"to_ms" jsonschema:"end of the time range, in epoch milliseconds"`
	Limit  int   `json:"limit,omitempty" jsonschema:"maximum snapshots to return, default 2000, hard cap 50000"`
}

// QueryRecentResult wraps matching Snapshots.
type QueryRecentResult struct {
	Snapshots []model.Snapshot `json:"snapshots" jsonschema:"matching snapshots, ascending by timestamp"`
}

// NewServer wires an Agent's tools into a fresh MCP server.
func NewServer(name, version string, agent *Agent) *Server {
	impl := &mcp.Implementation{Name: name, Version: version}
	s := &Server{agent: agent, mcpServer: mcp.NewServer(impl, nil)}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "explain_incident",
		Description: "Explain recent system health using AI-assisted analysis over the snapshot history graph. Use for 'why' questions and root-cause reasoning.",
	}, s.handleExplainIncident)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_recent",
		Description: "Query recent Snapshot records by timestamp range. Use for time-series inspection of CPU/memory/network/thermal history.",
	}, s.handleQueryRecent)

	return s
}

func (s *Server) handleExplainIncident(ctx context.Context, _ *mcp.CallToolRequest, args ExplainIncidentArgs) (*mcp.CallToolResult, ExplainIncidentResult, error) {
	answer, err := s.agent.ExplainIncident(ctx, args.Question)
	if err != nil {
		return nil, ExplainIncidentResult{}, err
	}
	return nil, ExplainIncidentResult{Answer: answer}, nil
}

func (s *Server) handleQueryRecent(_ context.Context, _ *mcp.CallToolRequest, args QueryRecentArgs) (*mcp.CallToolResult, QueryRecentResult, error) {
	snaps := s.agent.QueryRecent(args.FromMS, args.ToMS, args.Limit)
	return nil, QueryRecentResult{Snapshots: snaps}, nil
}

// Start runs the MCP server on stdio until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
