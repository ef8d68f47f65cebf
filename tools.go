package minerdiag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools exposes the diagnostic operations as MCP tools on the
// given server.
func (d *Diagnostics) RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("scan_logs",
		mcp.WithDescription("Scan miner logs for known error patterns from the error catalog"),
		mcp.WithNumber("lines",
			mcp.Description("Number of log lines to scan (default 500)"),
			mcp.DefaultNumber(500),
		),
	), d.handleScanLogs)

	s.AddTool(mcp.NewTool("lookup_error",
		mcp.WithDescription("Look up a known error by ID or search text"),
		mcp.WithString("query",
			mcp.Description("Error ID (e.g. X001) or search text"),
			mcp.Required(),
		),
	), d.handleLookupError)

	s.AddTool(mcp.NewTool("check_identities",
		mcp.WithDescription("Check identity health via credential files + recent logs (no live probes)"),
		mcp.WithString("accounts",
			mcp.Description("Comma-separated identity numbers, default all"),
		),
	), d.handleCheckIdentities)

	s.AddTool(mcp.NewTool("get_data_stats",
		mcp.WithDescription("Get current data counts from the miner database"),
	), d.handleGetDataStats)

	s.AddTool(mcp.NewTool("get_health_report",
		mcp.WithDescription("Get miner health including pm2 process state and ledger position"),
	), d.handleGetHealthReport)
}

func (d *Diagnostics) handleScanLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines := 0
	if v, ok := request.Params.Arguments["lines"].(float64); ok {
		lines = int(v)
	}
	return jsonResult(d.ScanLogs(ctx, lines))
}

func (d *Diagnostics) handleLookupError(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := request.Params.Arguments["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	return jsonResult(d.LookupError(query))
}

func (d *Diagnostics) handleCheckIdentities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := request.Params.Arguments["accounts"].(string)
	identities, err := parseIdentityList(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d.CheckIdentities(ctx, identities))
}

func (d *Diagnostics) handleGetDataStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(d.GetDataStats(ctx))
}

func (d *Diagnostics) handleGetHealthReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(d.GetExternalHealthReport(ctx))
}

// parseIdentityList parses "1,2,5" into identity numbers. An empty
// string means the configured default range.
func parseIdentityList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid identity number %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
