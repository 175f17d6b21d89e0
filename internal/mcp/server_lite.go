package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	litecfg "github.com/dctmd-mcp-server/internal/config"
	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/records"
	"github.com/dctmd-mcp-server/internal/service"
)

// LiteServer is a standalone MCP server: the DC/TMD registry plus an optional
// SQLite record store, served over stdio. It requires no external databases.
type LiteServer struct {
	config      *litecfg.LiteConfig
	server      *Server
	recordStore domain.RecordStore
	logger      *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithRecordStore sets a custom record store.
func WithRecordStore(store domain.RecordStore) LiteServerOption {
	return func(s *LiteServer) error {
		s.recordStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{config: cfg}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.logger == nil {
		logger, err := litecfg.NewLogger(cfg.Logging())
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		server.logger = logger
	}

	if server.recordStore == nil && cfg.RecordsEnabled() {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := records.NewSQLiteStore(cfg.RecordsDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create record store: %w", err)
		}
		server.recordStore = store
		server.logger.WithField("path", store.Path()).Debug("SQLite record store opened")
	}

	registry, err := diagnosis.NewDCTMDRegistry()
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to build diagnosis registry: %w", err)
	}

	svc := service.NewDiagnosticService(server.logger, registry, server.recordStore)
	server.server = NewServer(ServerInfo{
		Name:    litecfg.DefaultServerName,
		Version: litecfg.DefaultServerVersion,
	}, svc, server.logger)

	server.logger.WithFields(logrus.Fields{
		"diagnoses": registry.Len(),
		"records":   server.recordStore != nil,
		"data_dir":  cfg.DataDir,
	}).Info("Lite server initialized successfully")
	return server, nil
}

// Start serves MCP over stdio until the client disconnects or ctx is cancelled.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting DC/TMD MCP Server (Lite)...")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Server returns the tool server.
func (s *LiteServer) Server() *Server {
	return s.server
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if s.recordStore != nil {
		if err := s.recordStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close record store")
			return err
		}
	}
	return nil
}
