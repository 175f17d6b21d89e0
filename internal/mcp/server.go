// Package mcp exposes the diagnostic service as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/service"
)

// Server registers the diagnostic tools on an MCP SDK server
type Server struct {
	mcpServer *mcp.Server
	service   *service.DiagnosticService
	logger    *logrus.Logger
}

// ServerInfo contains MCP server metadata
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewServer creates a new MCP server instance with all tools registered
func NewServer(info ServerInfo, svc *service.DiagnosticService, logger *logrus.Logger) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    info.Name,
		Version: info.Version,
	}, nil)

	server := &Server{
		mcpServer: mcpServer,
		service:   svc,
		logger:    logger,
	}
	server.registerTools()

	return server
}

// MCPServer returns the underlying SDK server
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Run serves a single session over transport until the client disconnects or ctx is cancelled
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if err := s.mcpServer.Run(ctx, transport); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// registerTools registers every diagnostic tool with the SDK
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListDiagnoses,
		Description: "List the DC/TMD diagnoses the engine can evaluate, with category, examined regions and prerequisite diagnoses.",
	}, s.handleListDiagnoses)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolEvaluateDiagnoses,
		Description: "Evaluate a patient data document (sq questionnaire answers and e1-e10 examination findings) " +
			"against DC/TMD diagnostic criteria. Each diagnosis is positive, negative or pending (data missing).",
	}, s.handleEvaluateDiagnoses)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolRelevantItems,
		Description: "Given questionnaire (sq) answers only, report which diagnoses are still possible and which " +
			"examination sections and fields remain relevant.",
	}, s.handleRelevantItems)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolEvaluateRecord,
		Description: "Evaluate a stored patient record by ID against DC/TMD diagnostic criteria.",
	}, s.handleEvaluateRecord)

	s.logger.WithField("tool_count", 4).Info("Registered MCP tools")
}
