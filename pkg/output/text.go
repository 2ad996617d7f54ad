package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/powerdump/pkg/analyzer"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Legend lines printed above the report.
var legend = []string{
	"Table 1: Per app overall history (Foreground + Background) since last full charge or since when battery stats were reset.",
	"Table 2: Per app background standby metrics, only recorded while the screen was physically OFF.",
	"Table 3: BatteryStats Collector Diagnostic Summary.",
	"Table 4: Stats since disconnected from charger.",
	"Table 5: Foreground App Current Report (Measured uAh and projected mAh drain per hour of active screen use).",
}

const (
	uidWidth       = 10
	mahWidth       = 12
	durationWidth  = 35
	rawWidth       = 15
	secsWidth      = 12
	intensityWidth = 22
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts   FormatOptions
	layout Layout
}

// NewTextFormatter creates a new text formatter with the given options.
// A zero Layout falls back to the default widths with no attribute columns.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts, layout: opts.Layout.normalized()}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	fmt.Fprintf(w, "powerdump: %d rows (%d aggregated, %d background, %d diagnostic, %d since charge, %d foreground)\n",
		s.Rows(), s.Aggregated, s.Background, s.Diagnostic, s.SinceCharge, s.Foreground)
	if s.Peak != nil {
		f.formatPeak(s.Peak, w)
	}
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	width := f.layout.Width
	rule := strings.Repeat("=", width)

	// Legend
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, center("DIAGNOSTIC TABLE KEY", width))
	fmt.Fprintln(w, rule)
	for _, line := range legend {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, rule)

	// Banner
	fmt.Fprintln(w)
	fmt.Fprintln(w, center("POWER DIAGNOSTIC COMPREHENSIVE REPORT", width))
	fmt.Fprintln(w, center("Log Start Time: "+report.Metadata.StartClock, width))
	fmt.Fprintln(w, rule)

	tables := report.Tables
	f.formatAppStats("TABLE 1: PER-APP STATS", tables.Aggregated, w)
	f.formatAppStats("TABLE 2: PER-APP STATS (SCREEN-OFF ONLY)", tables.Background, w)
	f.formatCollector(fmt.Sprintf("TABLE 3: BatteryStats Collector (%s)", report.Metadata.WindowLabel), tables.Diagnostic, true, w)
	f.formatNotes(report.Notes.Diagnostic, w)
	f.formatCollector(fmt.Sprintf("TABLE 4: Since Last Charge Summary (%s)", report.Metadata.SinceChargeLabel), tables.SinceCharge, false, w)
	f.formatForeground(tables.Foreground, w)
	f.formatNotes(report.Notes.Foreground, w)

	fmt.Fprintln(w)
	elapsed := report.Metadata.Duration
	if f.opts.Elapsed != nil {
		elapsed = f.opts.Elapsed()
	}
	fmt.Fprintf(w, "Analysis Complete. Execution Time: %.4fs\n", elapsed.Seconds())
	if tables.Peak != nil {
		f.formatPeak(tables.Peak, w)
	}

	if f.opts.Verbose {
		s := report.Summary
		fmt.Fprintf(w, "Run ID: %s\n", report.RunID)
		fmt.Fprintf(w, "Source: %s (%d bytes)\n", report.Metadata.Source, report.Metadata.SizeBytes)
		fmt.Fprintf(w, "Lines scanned: %d, matched: %d, windows: %d, identifiers: %d\n",
			s.LinesScanned, s.LinesMatched, s.Windows, s.Identifiers)
	}

	return nil
}

func (f *TextFormatter) formatHeader(title string, header []cell, w io.Writer) {
	dash := strings.Repeat("-", f.layout.Width)
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, dash)
	fmt.Fprintln(w, joinCells(header))
	fmt.Fprintln(w, dash)
}

// formatAppStats renders a per-app table. Empty tables are omitted.
func (f *TextFormatter) formatAppStats(title string, stats []*parser.AppStat, w io.Writer) {
	if len(stats) == 0 {
		return
	}

	header := []cell{
		{"UID", uidWidth},
		{"Package Name", f.layout.NameWidth},
		{"mAh", mahWidth},
	}
	for _, c := range f.layout.Columns {
		header = append(header, cell{c.Title, c.Width})
	}
	f.formatHeader(title, header, w)

	for _, s := range stats {
		row := []cell{
			{s.ID, uidWidth},
			{truncateName(s.Name, f.layout.NameWidth), f.layout.NameWidth},
			{s.Power, mahWidth},
		}
		for _, c := range f.layout.Columns {
			v, ok := s.Attributes[c.Key]
			if !ok {
				v = parser.Placeholder
			}
			row = append(row, cell{v, c.Width})
		}
		fmt.Fprintln(w, joinCells(row))
	}
}

// formatCollector renders a collector table. Diagnostic rows carry the
// duration of the window they were reported in.
func (f *TextFormatter) formatCollector(title string, entries []parser.CollectorEntry, withWindow bool, w io.Writer) {
	header := []cell{
		{"UID", uidWidth},
		{"Package Name", f.layout.NameWidth},
		{"mAh", mahWidth},
		{"Foreground Duration", durationWidth},
	}
	if withWindow {
		header = append(header, cell{"Background Duration", durationWidth}, cell{"Window", 0})
	} else {
		header = append(header, cell{"Background Duration", 0})
	}
	f.formatHeader(title, header, w)

	for _, e := range entries {
		row := []cell{
			{e.ID, uidWidth},
			{truncateName(e.Name, f.layout.NameWidth), f.layout.NameWidth},
			{e.Power, mahWidth},
			{e.Foreground, durationWidth},
		}
		if withWindow {
			row = append(row, cell{e.Background, durationWidth}, cell{e.Duration, 0})
		} else {
			row = append(row, cell{e.Background, 0})
		}
		fmt.Fprintln(w, joinCells(row))
	}
}

func (f *TextFormatter) formatForeground(rows []analyzer.ForegroundRow, w io.Writer) {
	header := []cell{
		{"UID", uidWidth},
		{"Package Name", f.layout.NameWidth},
		{"Raw uAh", rawWidth},
		{"mAh", mahWidth},
		{"Secs", secsWidth},
		{"Intensity (mAh/s)", intensityWidth},
		{"1hr Proj", 0},
	}
	f.formatHeader("TABLE 5: Foreground App Current Report", header, w)

	for _, r := range rows {
		fmt.Fprintln(w, joinCells([]cell{
			{r.ID, uidWidth},
			{truncateName(r.Name, f.layout.NameWidth), f.layout.NameWidth},
			{fmt.Sprintf("%d", r.Raw), rawWidth},
			{fmt.Sprintf("%.2f", r.MilliAmpHours), mahWidth},
			{fmt.Sprintf("%d", r.Seconds), secsWidth},
			{fmt.Sprintf("%.5f", r.Intensity), intensityWidth},
			{fmt.Sprintf("%.1f mAh", r.ProjectedHourly), 0},
		}))
	}
}

func (f *TextFormatter) formatNotes(notes []string, w io.Writer) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w, "Notes:")
	for _, n := range notes {
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(n))
	}
}

func (f *TextFormatter) formatPeak(peak *analyzer.PeakDrain, w io.Writer) {
	fmt.Fprintf(w, "Peak projected drain: %s (uid %s) at %.1f mAh/hr\n", peak.Name, peak.ID, peak.ProjectedHourly)
}
