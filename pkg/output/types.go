// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/powerdump/pkg/analyzer"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Report is the complete analysis output.
type Report struct {
	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary" yaml:"summary"`

	// Tables holds the five report tables in render order.
	Tables analyzer.Tables `json:"tables" yaml:"tables"`

	// Notes are annotation lines captured from the collector and
	// foreground sections.
	Notes parser.SectionNotes `json:"notes" yaml:"notes"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// Rows per table, in render order.
	Aggregated  int `json:"aggregated" yaml:"aggregated"`
	Background  int `json:"background" yaml:"background"`
	Diagnostic  int `json:"diagnostic" yaml:"diagnostic"`
	SinceCharge int `json:"since_charge" yaml:"since_charge"`
	Foreground  int `json:"foreground" yaml:"foreground"`

	// LinesScanned is the number of dump lines read in the extraction pass.
	LinesScanned int `json:"lines_scanned" yaml:"lines_scanned"`

	// LinesMatched is the number of lines that produced a record.
	LinesMatched int `json:"lines_matched" yaml:"lines_matched"`

	// Identifiers is the number of identifiers resolved to names.
	Identifiers int `json:"identifiers" yaml:"identifiers"`

	// Windows is the number of reporting window declarations seen.
	Windows int `json:"windows" yaml:"windows"`

	// Peak is the highest projected hourly drain, if any.
	Peak *analyzer.PeakDrain `json:"peak,omitempty" yaml:"peak,omitempty"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`

	// Source is the dump that was analyzed.
	Source string `json:"source" yaml:"source"`

	// SizeBytes is the size of the dump.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// StartClock is the log start timestamp declared by the dump.
	StartClock string `json:"start_clock" yaml:"start_clock"`

	// WindowLabel is the last reporting window declared by the dump.
	WindowLabel string `json:"window_label" yaml:"window_label"`

	// SinceChargeLabel is the start of the charge cycle covered by Table 4.
	SinceChargeLabel string `json:"since_charge_label" yaml:"since_charge_label"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at" yaml:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration_ns" yaml:"duration"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, configFile string) *Report {
	tables := result.Tables
	meta := result.Metadata

	return &Report{
		RunID:  uuid.NewString(),
		Tables: tables,
		Notes:  result.Notes,
		Summary: Summary{
			Aggregated:   len(tables.Aggregated),
			Background:   len(tables.Background),
			Diagnostic:   len(tables.Diagnostic),
			SinceCharge:  len(tables.SinceCharge),
			Foreground:   len(tables.Foreground),
			LinesScanned: meta.Extraction.LinesScanned,
			LinesMatched: meta.Extraction.LinesMatched,
			Identifiers:  meta.Identifiers,
			Windows:      meta.Extraction.Windows,
			Peak:         tables.Peak,
		},
		Metadata: Metadata{
			ConfigFile:       configFile,
			Source:           meta.Source,
			SizeBytes:        meta.SizeBytes,
			StartClock:       meta.Dump.StartClock,
			WindowLabel:      meta.Dump.WindowLabel,
			SinceChargeLabel: meta.Dump.SinceChargeLabel,
			AnalyzedAt:       meta.EndTime,
			Duration:         meta.Duration(),
		},
	}
}

// Rows returns the total number of rows across all tables.
func (s Summary) Rows() int {
	return s.Aggregated + s.Background + s.Diagnostic + s.SinceCharge + s.Foreground
}
