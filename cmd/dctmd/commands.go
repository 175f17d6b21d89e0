package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dctmd-mcp-server/internal/config"
	"github.com/dctmd-mcp-server/internal/database"
	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/service"
)

// cliOptions holds the persistent flags
type cliOptions struct {
	configFile string
	logLevel   string
}

// app is the per-invocation wiring shared by subcommands
type app struct {
	cfg     *domain.Config
	logger  *logrus.Logger
	service *service.DiagnosticService
	store   domain.RecordStore
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close record store")
		}
	}
}

func loadConfig(opts *cliOptions) (*domain.Config, *logrus.Logger, error) {
	var managerOpts []config.ManagerOption
	if opts.configFile != "" {
		managerOpts = append(managerOpts, config.WithConfigFile(opts.configFile))
	}
	manager, err := config.NewManager(managerOpts...)
	if err != nil {
		return nil, nil, err
	}

	cfg := manager.GetConfig()
	logger, err := config.NewLogger(domain.LoggingConfig{
		Level:  opts.logLevel,
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp loads configuration and builds the service. The record store is only
// opened when withRecords is set.
func newApp(ctx context.Context, opts *cliOptions, withRecords bool) (*app, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	registry, err := diagnosis.NewDCTMDRegistry()
	if err != nil {
		return nil, fmt.Errorf("building diagnosis registry: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	if withRecords {
		store, err := database.OpenRecordStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, service.ErrRecordsUnavailable
		}
		a.store = store
	}

	a.service = service.NewDiagnosticService(logger, registry, a.store)
	return a, nil
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "dctmd",
		Short: "Evaluate DC/TMD diagnostic criteria against patient data documents",
		Long: `dctmd evaluates questionnaire (SQ) and examination (E1-E10) data against the
DC/TMD diagnostic criteria and reports positive, negative or pending verdicts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./config.yaml, ./config/, /etc/dctmd/)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newDiagnosesCmd(opts),
		newEvaluateCmd(opts),
		newRelevanceCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newMigrateCmd(opts),
		newSetupCmd(),
	)
	return rootCmd
}
