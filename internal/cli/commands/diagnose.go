package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/powerdump/pkg/analyzer"
	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/detector"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Check statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose <dump-file>",
		Short: "Diagnose why a dump produces empty or odd tables",
		Long: `Diagnose common problems between a configuration and a dump.

This command checks:
- Config file syntax and structure (when --config is given)
- Dump file existence and size
- Section markers present in the dump
- Window timestamps against the configured layouts
- Name and identifier declarations

Example:
  powerdump diagnose dumpstate.txt
  powerdump diagnose -c powerdump.yaml -v dumpstate.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results := runDiagnose(ctx, g.ConfigPath(), args[0])
			printDiagnostics(cmd.OutOrStdout(), results, g.Verbose())
			return nil
		},
	}

	return cmd
}

func runDiagnose(ctx context.Context, configPath, dumpPath string) []DiagnosticResult {
	results := []DiagnosticResult{}

	cfg, result := checkConfig(ctx, configPath)
	results = append(results, result)
	if result.Status == StatusError {
		return results
	}

	result = checkDump(dumpPath)
	results = append(results, result)
	if result.Status == StatusError {
		return results
	}

	d := detector.New(
		detector.WithParserOptions(analyzer.ParserOptions(cfg)),
		detector.WithFormats(configuredFormats(cfg)...),
	)
	survey, err := d.DetectFromFile(ctx, dumpPath)
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Dump Survey",
			Status:  StatusError,
			Message: fmt.Sprintf("Cannot read dump: %v", err),
		})
	}

	results = append(results, checkSections(survey, dumpPath))
	results = append(results, checkTimestamps(ctx, survey, cfg, dumpPath))
	results = append(results, checkDeclarations(survey))

	return results
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	if path == "" {
		cfg, err := config.Load(ctx, "")
		if err != nil {
			result.Status = StatusError
			result.Message = fmt.Sprintf("Invalid environment overrides: %v", err)
			return nil, result
		}
		result.Status = StatusOK
		result.Message = "Using built-in defaults"
		return cfg, result
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = StatusError
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'powerdump config > powerdump.yaml' to start from the defaults",
		}
		return nil, result
	case err != nil:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return nil, result
	case info.IsDir():
		result.Status = StatusError
		result.Message = "Path is a directory, not a file"
		return nil, result
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		result.Suggests = []string{
			"Check YAML syntax (indentation, quotes, colons)",
			"Patterns need at least one capture group",
		}
		return nil, result
	}

	result.Status = StatusOK
	result.Message = fmt.Sprintf("Loaded: %s (%d bytes)", path, info.Size())
	return cfg, result
}

func checkDump(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Dump File",
	}

	size, err := parser.StatDump(path)
	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}

	if size == 0 {
		result.Status = StatusError
		result.Message = "Dump file is empty"
		return result
	}

	result.Status = StatusOK
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, size)
	return result
}

func checkSections(survey *detector.DetectionResult, dumpPath string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Section Markers",
	}

	for _, s := range survey.Sections {
		if s.Count > 0 {
			result.Details = append(result.Details, fmt.Sprintf("%s: line %d (%d found)", s.State, s.FirstLine, s.Count))
		} else {
			result.Details = append(result.Details, fmt.Sprintf("%s: marker %q not found", s.State, s.Marker))
		}
	}

	missing := survey.Missing()
	switch {
	case !survey.HasSections():
		result.Status = StatusError
		result.Message = "No section markers found; every table will be empty"
		result.Suggests = []string{
			"Check the markers section of your config against the dump",
			"Use 'powerdump detect " + dumpPath + "' to see what the dump contains",
		}
	case len(missing) > 0:
		names := make([]string, len(missing))
		for i, s := range missing {
			names[i] = s.String()
		}
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("%d of %d sections found; missing: %s",
			len(survey.Sections)-len(missing), len(survey.Sections), strings.Join(names, ", "))
	default:
		result.Status = StatusOK
		result.Message = fmt.Sprintf("All %d sections found", len(survey.Sections))
	}

	return result
}

func checkTimestamps(ctx context.Context, survey *detector.DetectionResult, cfg *config.Config, dumpPath string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Timestamp Layouts",
		Details: []string{
			fmt.Sprintf("layout_seconds: %s", cfg.Timestamps.LayoutSeconds),
			fmt.Sprintf("layout_minutes: %s", cfg.Timestamps.LayoutMinutes),
		},
	}

	if survey.Timestamps == 0 {
		result.Status = StatusWarning
		result.Message = "No window or since-charge timestamps found"
		return result
	}

	matched := survey.Parsed
	if matched == survey.Timestamps {
		result.Status = StatusOK
		result.Message = fmt.Sprintf("Configured layouts parse %d/%d timestamps", survey.Timestamps, survey.Timestamps)
		return result
	}

	result.Status = StatusWarning
	if matched == 0 {
		result.Status = StatusError
	}
	result.Message = fmt.Sprintf("Configured layouts parse %d/%d timestamps; window durations will show as unknown",
		matched, survey.Timestamps)
	result.Suggests = []string{"Use 'powerdump detect " + dumpPath + "' to find matching layouts"}

	// Survey again with the built-in formats and suggest the best of each.
	auto, err := detector.New(detector.WithParserOptions(analyzer.ParserOptions(cfg))).DetectFromFile(ctx, dumpPath)
	if err == nil {
		for _, p := range []detector.Precision{detector.PrecisionSeconds, detector.PrecisionMinutes} {
			if best := auto.BestMatch(p); best != nil {
				result.Suggests = append(result.Suggests,
					fmt.Sprintf("Suggested layout_%s: %s (%s)", p, best.Format.Layout, best.Format.Name))
			}
		}
	}

	return result
}

func checkDeclarations(survey *detector.DetectionResult) DiagnosticResult {
	result := DiagnosticResult{
		Check:   "Declarations",
		Message: fmt.Sprintf("%d name and %d identifier declarations", survey.Names, survey.Identifiers),
	}

	switch {
	case survey.Names == 0 || survey.Identifiers == 0:
		result.Status = StatusWarning
		result.Suggests = []string{
			"Application names will show as System:<id>",
			"Check markers.name_pattern and markers.identifier_pattern",
		}
	default:
		result.Status = StatusOK
	}

	return result
}

// configuredFormats turns the configured layouts into detection formats.
func configuredFormats(cfg *config.Config) []*detector.TimestampFormat {
	return []*detector.TimestampFormat{
		{Name: "layout_seconds", Layout: cfg.Timestamps.LayoutSeconds, Precision: detector.PrecisionSeconds},
		{Name: "layout_minutes", Layout: cfg.Timestamps.LayoutMinutes, Precision: detector.PrecisionMinutes},
	}
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, verbose bool) {
	_, _ = fmt.Fprintln(w, "=== powerdump Diagnostics ===")
	_, _ = fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case StatusOK:
			icon = "PASS"
			okCount++
		case StatusWarning:
			icon = "WARN"
			warnCount++
		case StatusError:
			icon = "FAIL"
			errCount++
		}

		_, _ = fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		_, _ = fmt.Fprintf(w, "    %s\n", r.Message)

		if verbose || r.Status != StatusOK {
			for _, d := range r.Details {
				_, _ = fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			_, _ = fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		_, _ = fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	case warnCount > 0:
		_, _ = fmt.Fprintln(w, "\nSome tables may be incomplete.")
	default:
		_, _ = fmt.Fprintln(w, "\nDump and configuration look good!")
	}
}
