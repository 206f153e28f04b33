package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hivcare/emr/internal/domain/hts"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score an HTS risk indicator map offline",
		Long: "Reads a JSON object of indicator answers, either flat or wrapped as\n" +
			`{"answers": {...}}, from a file or stdin ("-") and prints the risk scores.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runScore(cmd.Context(), in, cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")
	return cmd
}

func runScore(ctx context.Context, in io.Reader, out io.Writer, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := readAnswers(in)
	if err != nil {
		return err
	}

	result, ignored := hts.NewService(nil, nil).Assess(ctx, raw)

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			hts.RiskScoreResult
			IgnoredIndicators []string `json:"ignored_indicators,omitempty"`
		}{result, ignored})
	case "text", "":
		return writeScoreTable(out, result, ignored)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func readAnswers(in io.Reader) (map[string]bool, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Answers map[string]bool `json:"answers"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Answers != nil {
		return wrapped.Answers, nil
	}

	var flat map[string]bool
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("input must be a JSON object of indicator booleans: %w", err)
	}
	if flat == nil {
		return nil, fmt.Errorf("input must be a JSON object of indicator booleans")
	}
	return flat, nil
}

func writeScoreTable(out io.Writer, r hts.RiskScoreResult, ignored []string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tSCORE\tSEVERITY")
	fmt.Fprintf(tw, "HIV risk\t%d/%d\t%s\n", r.HIVRiskScore, hts.MaxScore(hts.GroupHIVRisk), r.HIVRiskSeverity)
	fmt.Fprintf(tw, "Partner risk\t%d/%d\t%s\n", r.PartnerRiskScore, hts.MaxScore(hts.GroupPartnerRisk), r.PartnerRiskSeverity)
	fmt.Fprintf(tw, "STI screening\t%d/%d\t%s\n", r.STIScreeningScore, hts.MaxScore(hts.GroupSTIScreening), r.STISeverity)
	fmt.Fprintf(tw, "Knowledge\t%d/%d\t\n", r.KnowledgeScore, hts.MaxScore(hts.GroupKnowledge))
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, a := range r.Advisories {
		fmt.Fprintf(out, "advisory: %s\n", a)
	}
	if len(ignored) > 0 {
		fmt.Fprintf(out, "ignored: %s\n", strings.Join(ignored, ", "))
	}
	return nil
}
