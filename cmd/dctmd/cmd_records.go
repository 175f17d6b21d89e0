package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dctmd-mcp-server/internal/database"
	"github.com/dctmd-mcp-server/internal/records"
	"github.com/dctmd-mcp-server/internal/service"
)

func newImportCmd(opts *cliOptions) *cobra.Command {
	var (
		id     string
		file   string
		bundle string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a patient data document, or a JSON export bundle, in the record store",
		Example: `  dctmd import --id patient-17 --file patient.yaml
  dctmd import --bundle records-export.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (bundle == "") {
				return fmt.Errorf("exactly one of --file or --bundle is required")
			}

			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if bundle != "" {
				f, err := os.Open(bundle)
				if err != nil {
					return fmt.Errorf("opening bundle: %w", err)
				}
				defer f.Close()

				imported, skipped, err := records.ImportJSON(cmd.Context(), a.store, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d records, skipped %d existing\n", imported, skipped)
				return nil
			}

			doc, err := records.LoadDocument(file)
			if err != nil {
				return err
			}
			record, err := a.service.StoreRecord(cmd.Context(), &service.StoreRecordRequest{RecordID: id, Data: doc})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), record.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record ID (generated when empty)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "document path, - for stdin")
	cmd.Flags().StringVar(&bundle, "bundle", "", "JSON export bundle produced by dctmd export")
	return cmd
}

func newExportCmd(opts *cliOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored record as a JSON bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return records.ExportJSON(cmd.Context(), a.store, w)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default stdout)")
	return cmd
}

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back PostgreSQL record store migrations",
		Long:      "migrate applies the schema embedded in the binary, or the SQL files under database.migrations_path when set.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := database.ParseDirection(args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}

			mg, err := database.NewMigrator(database.URL(cfg.Database), cfg.Database.MigrationsPath, logger)
			if err != nil {
				return err
			}
			defer mg.Close()

			if err := mg.Migrate(cmd.Context(), dir); err != nil {
				return err
			}

			version, dirty, err := mg.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	return cmd
}
