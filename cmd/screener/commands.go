package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/config"
	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/logging"
	"screener_valuation/pkg/core/report"
	"screener_valuation/pkg/core/store"
	"screener_valuation/pkg/core/utils"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "screener",
		Short:         "Analyse Screener.in workbook exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default config/analysis.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(newAnalyzeCmd(opts), newInspectCmd(opts))
	return cmd
}

func (o *rootOptions) load(stderr io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, logging.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Format), nil
}

type analyzeOptions struct {
	format      string
	output      string
	save        bool
	assumptions string
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract, compute ratios, value and score one workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "output format: markdown, json or html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the report in the configured store")
	cmd.Flags().StringVar(&opts.assumptions, "assumptions", "", `assumption overrides as (lenient) JSON, e.g. '{wacc: 0.11}'`)
	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, path string) error {
	format := strings.ToLower(opts.format)
	if format != "markdown" && format != "json" && format != "html" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, log, err := root.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := utils.SmartDecode(opts.assumptions, cfg.Assumptions)
	if err != nil {
		return err
	}
	if err := config.ValidateAssumptions(a); err != nil {
		return err
	}

	ex, err := cfg.Extractor(log)
	if err != nil {
		return err
	}
	engine := analysis.NewEngine(ex, a, log)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rep, err := engine.AnalyzeWorkbook(cmd.Context(), f, filepath.Base(path))
	if err != nil {
		return err
	}

	if opts.save {
		repo, err := store.Open(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN, log)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.Save(cmd.Context(), rep); err != nil {
			return err
		}
		log.Info().Str("id", rep.ID).Str("driver", cfg.Store.Driver).Msg("report saved")
	}

	var out []byte
	switch format {
	case "json":
		out, err = json.MarshalIndent(rep, "", "  ")
	case "html":
		out, err = report.HTML(rep)
	default:
		out = []byte(report.Markdown(rep))
	}
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), opts.output, out)
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List section markers, metadata rows and P&L periods of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer f.Close()

			g, err := grid.Load(f, filepath.Base(args[0]))
			if err != nil {
				return extract.NewStructuralError("unreadable workbook", err)
			}
			ins := extract.Inspect(g, cfg.Extract.MetadataWindow)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ins)
			}
			printInspection(cmd.OutOrStdout(), ins)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printInspection(w io.Writer, ins extract.Inspection) {
	fmt.Fprintf(w, "Company: %s\n", ins.Company)
	fmt.Fprintf(w, "Grid:    %d rows x %d columns\n\n", ins.Rows, ins.Width)

	fmt.Fprintln(w, "Section markers:")
	if len(ins.Markers) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, m := range ins.Markers {
		fmt.Fprintf(w, "  row %-4d %s\n", m.Row, m.Label)
	}

	fmt.Fprintln(w, "\nMetadata rows:")
	if len(ins.Metadata) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, m := range ins.Metadata {
		fmt.Fprintf(w, "  row %-4d %-24s %s\n", m.Row, m.Label, strings.Join(m.Values, " | "))
	}

	fmt.Fprintf(w, "\nP&L periods (%d): %s\n", len(ins.Periods), strings.Join(ins.Periods, ", "))
}

func write(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
