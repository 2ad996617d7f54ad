package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/powerdump/pkg/analyzer"
	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/output"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output string
	Quiet  bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(g *Globals) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <dump-file>",
		Short: "Report per-app power usage from a dump",
		Long: `Analyze a power-usage diagnostic dump and print five report tables.

Tables:
  1 - Per-app stats
  2 - Per-app stats while the screen was off
  3 - Collector diagnostic summary, newest window first
  4 - Collector summary since the last charge
  5 - Foreground app current with projected hourly drain

The dump is read twice: once to resolve application names, once to
extract records. Markers and patterns come from --config, or the
built-in defaults.

Exit codes:
  0 - Report written
  2 - Missing dump, bad configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|yaml)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no tables")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, g *Globals, opts *AnalyzeOptions) error {
	start := time.Now()
	dumpPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	size, err := parser.StatDump(dumpPath)
	if err != nil {
		return err
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Fail on a bad format before reading the dump.
	formatter, err := createFormatter(cfg, g, opts, start)
	if err != nil {
		return err
	}

	log := g.Logger(cmd.ErrOrStderr())

	a, err := analyzer.NewAnalyzer(cfg,
		analyzer.WithLogger(log),
		analyzer.WithSource(dumpPath, size),
		analyzer.WithStartTime(start),
	)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Analyze(ctx, parser.FileOpener(dumpPath))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	log.Info().Msg("Formatting report")
	report := output.NewReport(result, g.ConfigPath())
	report.Metadata.Duration = time.Since(start)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}

// createFormatter builds the selected formatter. The text closing line
// reports the time elapsed since start.
func createFormatter(cfg *config.Config, g *Globals, opts *AnalyzeOptions, start time.Time) (output.Formatter, error) {
	return output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: g.Verbose(),
		Quiet:   opts.Quiet,
		Layout:  output.LayoutFromConfig(cfg.Tables),
		Elapsed: func() time.Duration { return time.Since(start) },
	})
}
