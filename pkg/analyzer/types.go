// Package analyzer runs the extraction passes over a dump and aggregates
// the records into report tables.
package analyzer

import (
	"time"

	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Table identifies one of the five report tables.
type Table int

const (
	TableAggregated Table = iota + 1
	TableBackground
	TableDiagnostic
	TableSinceCharge
	TableForeground
)

// String returns the table's display name.
func (t Table) String() string {
	switch t {
	case TableAggregated:
		return "Table 1"
	case TableBackground:
		return "Table 2"
	case TableDiagnostic:
		return "Table 3"
	case TableSinceCharge:
		return "Table 4"
	case TableForeground:
		return "Table 5"
	default:
		return "Table ?"
	}
}

// ForegroundRow is a Table 5 row with its derived drain figures.
type ForegroundRow struct {
	parser.ForegroundEntry `yaml:",inline"`

	// Raw is the measured charge in micro-units.
	Raw int64 `json:"raw" yaml:"raw"`

	// MilliAmpHours is Raw / 1000.
	MilliAmpHours float64 `json:"mah" yaml:"mah"`

	// Seconds is the elapsed foreground time.
	Seconds int64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`

	// Intensity is mAh per second, zero when Seconds is zero.
	Intensity float64 `json:"intensity" yaml:"intensity"`

	// ProjectedHourly is Intensity extrapolated to one hour.
	ProjectedHourly float64 `json:"projected_hourly" yaml:"projected_hourly"`
}

// PeakDrain names the application with the highest projected hourly drain.
type PeakDrain struct {
	ID              string  `json:"uid" yaml:"uid"`
	Name            string  `json:"name" yaml:"name"`
	ProjectedHourly float64 `json:"projected_hourly" yaml:"projected_hourly"`
}

// Tables holds the five report tables in render order.
type Tables struct {
	Aggregated  []*parser.AppStat       `json:"aggregated" yaml:"aggregated"`
	Background  []*parser.AppStat       `json:"background" yaml:"background"`
	Diagnostic  []parser.CollectorEntry `json:"diagnostic" yaml:"diagnostic"`
	SinceCharge []parser.CollectorEntry `json:"since_charge" yaml:"since_charge"`
	Foreground  []ForegroundRow         `json:"foreground" yaml:"foreground"`

	// Peak is nil when Table 5 is empty.
	Peak *PeakDrain `json:"peak,omitempty" yaml:"peak,omitempty"`
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	Tables Tables

	// Notes are annotation lines captured for display.
	Notes parser.SectionNotes

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Source is the dump that was analyzed.
	Source string

	// SizeBytes is the dump size, when known.
	SizeBytes int64

	// Dump holds the banner and title labels found in the dump.
	Dump parser.DumpMetadata

	// Identifiers is the number of resolved identifiers.
	Identifiers int

	// Extraction counts lines, matches and windows from the extraction pass.
	Extraction parser.ExtractStats

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// Duration returns the wall-clock processing time.
func (m AnalysisMetadata) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}
