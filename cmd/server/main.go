// Command server exposes the DC/TMD engine over HTTP with an optional
// PostgreSQL or SQLite record store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/api"
	"github.com/dctmd-mcp-server/internal/config"
	"github.com/dctmd-mcp-server/internal/database"
	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err == nil {
		err = configManager.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}

	cfg := configManager.GetConfig()
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}

	if err := serve(configManager, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func serve(configManager *config.Manager, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := configManager.GetConfig()

	registry, err := diagnosis.NewDCTMDRegistry()
	if err != nil {
		return fmt.Errorf("building diagnosis registry: %w", err)
	}

	store, err := database.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	logger.WithFields(logrus.Fields{
		"host":      cfg.Server.Host,
		"port":      cfg.Server.Port,
		"records":   cfg.Records.Driver,
		"diagnoses": registry.Len(),
	}).Info("Starting DC/TMD diagnostic server")

	svc := service.NewDiagnosticService(logger, registry, store)
	return api.NewServer(configManager, svc, logger).Start(ctx)
}
