package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/records"
	"github.com/dctmd-mcp-server/internal/service"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newDiagnosesCmd(opts *cliOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diagnoses",
		Short: "List the diagnoses in the DC/TMD registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			summaries := a.service.ListDiagnoses()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tREQUIRES")
			for _, s := range summaries {
				requires := make([]string, len(s.Requires))
				for i, id := range s.Requires {
					requires[i] = string(id)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, strings.Join(requires, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newEvaluateCmd(opts *cliOptions) *cobra.Command {
	var (
		file      string
		diagnoses []string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a patient data document (YAML or JSON)",
		Example: `  dctmd evaluate --file patient.yaml
  dctmd evaluate --file patient.json --diagnosis myalgia --diagnosis arthralgia --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := records.LoadDocument(file)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.service.Evaluate(cmd.Context(), &service.EvaluateRequest{Data: doc, Diagnoses: diagnoses})
			if err != nil {
				return err
			}
			return printEvaluation(cmd.OutOrStdout(), resp, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document path, - for stdin")
	cmd.Flags().StringArrayVarP(&diagnoses, "diagnosis", "d", nil, "diagnosis ID to evaluate (repeatable; default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result trees as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printEvaluation(w io.Writer, resp *service.EvaluationResponse, asJSON bool) error {
	if asJSON {
		return writeJSON(w, resp)
	}
	for _, r := range resp.Results {
		if _, err := fmt.Fprintln(w, r.Summary()); err != nil {
			return err
		}
	}
	return nil
}

func newRelevanceCmd(opts *cliOptions) *cobra.Command {
	var (
		file      string
		diagnoses []string
	)

	cmd := &cobra.Command{
		Use:   "relevance",
		Short: "Report which examination items still matter given questionnaire answers",
		Long: `relevance reads either a full patient data document (its sq section is used)
or a bare mapping of questionnaire answers, and prints the diagnoses still possible
and the examination sections and fields relevant to them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := records.LoadDocument(file)
			if err != nil {
				return err
			}
			sq := doc
			if nested := doc.Get("sq"); nested.Kind() == domain.KindMap {
				sq = nested
			}

			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.service.RelevantItems(cmd.Context(), &service.RelevanceRequest{SQ: sq, Diagnoses: diagnoses})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document or answers path, - for stdin")
	cmd.Flags().StringArrayVarP(&diagnoses, "diagnosis", "d", nil, "diagnosis ID to consider (repeatable; default all)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
