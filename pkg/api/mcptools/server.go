// Package mcptools exposes the valuation and deviation engines as MCP tools.
package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"tokenized_valuation/pkg/core/deviation"
	"tokenized_valuation/pkg/core/valuation"
)

const ServerName = "tokenized-valuation"

// Tools binds the tool handlers to the engines they drive.
type Tools struct {
	Valuation *valuation.Engine
	Deviation *deviation.Engine
}

// NewServer builds an MCP server with every tool registered.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version, server.WithToolCapabilities(true))
	t.Register(s)
	return s
}

// Register adds the tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(createSelectModelTool(), t.handleSelectModel)
	s.AddTool(createRunWorkflowTool(), t.handleRunWorkflow)
	s.AddTool(createComputeTool(), t.handleCompute)
	s.AddTool(createRecalculateTool(), t.handleRecalculate)
	s.AddTool(createAnalyzeDeviationTool(), t.handleAnalyzeDeviation)
	s.AddTool(createListBenchmarksTool(), t.handleListBenchmarks)
}
