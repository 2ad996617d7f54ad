package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/powerdump/pkg/analyzer"
	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/detector"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(g *Globals) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <dump-file>",
		Short: "Survey a dump for section markers and timestamp formats",
		Long: `Survey a dump for the markers and declarations the analyzer relies on.

Reports where each report section starts, how many name and identifier
declarations were seen, and which timestamp layouts parse the reporting
window and since-charge timestamps. Prints a ready-to-use YAML snippet.

Optionally generates a starter config file with --write-config.

Example:
  powerdump detect dumpstate.txt
  powerdump detect --sample 5000 dumpstate.txt
  powerdump detect -w powerdump.yaml dumpstate.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 0, "Number of lines to sample (0 reads the whole dump)")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, g *Globals, opts *DetectOptions) error {
	dumpPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text, json)", opts.Output)
	}

	if _, err := parser.StatDump(dumpPath); err != nil {
		return err
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithParserOptions(analyzer.ParserOptions(cfg)),
	)

	result, err := d.DetectFromFile(ctx, dumpPath)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, cfg, dumpPath, opts.WriteConfig); err != nil {
			return err
		}
	}

	if opts.Output == "json" {
		return outputDetectJSON(out, result, dumpPath, opts)
	}
	outputDetectText(out, result, dumpPath, opts)
	return nil
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, dumpPath string, opts *DetectOptions) {
	_, _ = fmt.Fprintln(w, "=== Dump Survey ===")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "File: %s\n", dumpPath)
	_, _ = fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	_, _ = fmt.Fprintf(w, "Dump boundaries: %d\n", result.Boundaries)
	_, _ = fmt.Fprintf(w, "Reporting windows: %d\n", result.Windows)
	_, _ = fmt.Fprintf(w, "Name declarations: %d\n", result.Names)
	_, _ = fmt.Fprintf(w, "Identifier declarations: %d\n", result.Identifiers)
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "Sections:")
	for _, s := range result.Sections {
		if s.Count == 0 {
			_, _ = fmt.Fprintf(w, "  %-22s not found (marker %q)\n", s.State, s.Marker)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %-22s line %d (%d found)\n", s.State, s.FirstLine, s.Count)
	}
	_, _ = fmt.Fprintln(w)

	if !result.HasMatch() {
		_, _ = fmt.Fprintf(w, "No timestamp format detected (%d timestamps found).\n", result.Timestamps)
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Tip: Check the window and since-charge lines manually and set")
		_, _ = fmt.Fprintln(w, "timestamps.layout_seconds and timestamps.layout_minutes in your config.")
		return
	}

	for _, p := range []detector.Precision{detector.PrecisionSeconds, detector.PrecisionMinutes} {
		best := result.BestMatch(p)
		if best == nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "Detected Format (%s): %s\n", p, best.Format.Name)
		_, _ = fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d timestamps matched)\n",
			best.Confidence*100, best.MatchCount, result.Timestamps)
		_, _ = fmt.Fprintf(w, "Sample match: %s\n", best.Sample)
		_, _ = fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05 MST"))
		_, _ = fmt.Fprintln(w)
	}

	if result.AmbiguityNote != "" {
		_, _ = fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "timestamps:")
	if best := result.BestMatch(detector.PrecisionSeconds); best != nil {
		_, _ = fmt.Fprintf(w, "  layout_seconds: \"%s\"\n", best.Format.Layout)
	}
	if best := result.BestMatch(detector.PrecisionMinutes); best != nil {
		_, _ = fmt.Fprintf(w, "  layout_minutes: \"%s\"\n", best.Format.Layout)
	}
	_, _ = fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		_, _ = fmt.Fprintln(w, "--- All formats detected ---")
		for i, m := range result.Matches {
			_, _ = fmt.Fprintf(w, "%d. %s (%.1f%% confidence, %s)\n", i+1, m.Format.Name, m.Confidence*100, m.Format.Precision)
			_, _ = fmt.Fprintf(w, "   layout: \"%s\"\n", m.Format.Layout)
		}
		_, _ = fmt.Fprintln(w)
	}
}

// JSONSection represents a section survey in JSON output.
type JSONSection struct {
	Section   string `json:"section"`
	Marker    string `json:"marker"`
	Count     int    `json:"count"`
	FirstLine int    `json:"first_line,omitempty"`
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Layout     string  `json:"layout"`
	Precision  string  `json:"precision"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	Sample     string  `json:"sample"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string        `json:"file"`
	SampledLines  int           `json:"sampled_lines"`
	Boundaries    int           `json:"boundaries"`
	Windows       int           `json:"windows"`
	Names         int           `json:"names"`
	Identifiers   int           `json:"identifiers"`
	Timestamps    int           `json:"timestamps"`
	Sections      []JSONSection `json:"sections"`
	Matches       []JSONMatch   `json:"matches"`
	AmbiguityNote string        `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, dumpPath string, opts *DetectOptions) error {
	output := JSONOutput{
		File:          dumpPath,
		SampledLines:  result.SampledLines,
		Boundaries:    result.Boundaries,
		Windows:       result.Windows,
		Names:         result.Names,
		Identifiers:   result.Identifiers,
		Timestamps:    result.Timestamps,
		AmbiguityNote: result.AmbiguityNote,
		Sections:      make([]JSONSection, 0, len(result.Sections)),
		Matches:       make([]JSONMatch, 0),
	}

	for _, s := range result.Sections {
		output.Sections = append(output.Sections, JSONSection{
			Section:   s.State.String(),
			Marker:    s.Marker,
			Count:     s.Count,
			FirstLine: s.FirstLine,
		})
	}

	var matches []detector.FormatMatch
	if opts.ShowAll {
		matches = result.Matches
	} else {
		// Best match per layout slot
		for _, p := range []detector.Precision{detector.PrecisionSeconds, detector.PrecisionMinutes} {
			if best := result.BestMatch(p); best != nil {
				matches = append(matches, *best)
			}
		}
	}

	for _, m := range matches {
		output.Matches = append(output.Matches, JSONMatch{
			Name:       m.Format.Name,
			Layout:     m.Format.Layout,
			Precision:  m.Format.Precision.String(),
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			Sample:     m.Sample,
			Ambiguous:  m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig writes base with the detected layouts to configPath.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, base *config.Config, dumpPath, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if !result.HasMatch() {
		return errors.New("cannot generate config: no timestamp format detected")
	}

	data, err := config.Marshal(result.SuggestConfig(base))
	if err != nil {
		return err
	}

	header := fmt.Sprintf("# powerdump configuration\n# Generated by: powerdump detect %s\n\n", dumpPath)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}
