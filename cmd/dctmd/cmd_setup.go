package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dctmd-mcp-server/internal/setup"
)

// clientConfigPath returns the flag value, or the desktop client default for this OS
func clientConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return setup.ClientConfigPath(setup.Environment{GOOS: runtime.GOOS, Home: home, Getenv: os.Getenv})
}

func newSetupCmd() *cobra.Command {
	var clientConfig string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register mcp-server-lite with a desktop MCP client",
	}
	cmd.PersistentFlags().StringVar(&clientConfig, "client-config", "", "client config file (default: per-OS claude_desktop_config.json)")

	cmd.AddCommand(newSetupRegisterCmd(&clientConfig), newSetupStatusCmd(&clientConfig))
	return cmd
}

func newSetupRegisterCmd(clientConfig *string) *cobra.Command {
	var (
		binary  string
		dataDir string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Add or replace the dctmd entry in the client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := clientConfigPath(*clientConfig)
			if err != nil {
				return err
			}
			if binary == "" {
				if binary, err = setup.FindBinary(setup.LiteBinary); err != nil {
					return err
				}
			}

			cfg, err := setup.LoadClientConfig(path)
			if err != nil {
				return err
			}
			cfg.MCPServers[setup.ServerKey] = setup.NewServerEntry(binary, dataDir)

			if dryRun {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s in %s\n", binary, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&binary, "binary", "", "path to mcp-server-lite (default: looked up on PATH)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory passed as DCTMD_DATA_DIR")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the resulting config instead of writing it")
	return cmd
}

func newSetupStatusCmd(clientConfig *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the client config registers this server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := clientConfigPath(*clientConfig)
			if err != nil {
				return err
			}
			st, err := setup.Check(path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		},
	}
}
