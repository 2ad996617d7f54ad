// Package parser reads power-usage dumps and extracts per-application records.
//
// Extraction runs in two passes over the same input. The first pass
// resolves identifiers to application names; the second tracks report
// sections and reporting windows while pattern-matching record rows.
package parser

import "fmt"

// Line is a single raw line read from a dump.
type Line struct {
	// Raw is the decoded line content without the trailing newline.
	Raw string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int

	// Oversized is set when the line exceeded the maximum line size and
	// its content was discarded.
	Oversized bool
}

// IdentifierMap maps a numeric identifier (in string form) to an
// application name.
type IdentifierMap map[string]string

// Resolve returns the name for id, or the synthetic "System:<id>" label.
func (m IdentifierMap) Resolve(id string) string {
	if name, ok := m[id]; ok {
		return name
	}
	return fmt.Sprintf("System:%s", id)
}

// Window is a reporting window. A zero-width window has Start == End.
type Window struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// DumpMetadata holds dump-wide labels collected during the first pass.
type DumpMetadata struct {
	// StartClock is the log start timestamp shown in the report banner.
	StartClock string `json:"start_clock" yaml:"start_clock"`

	// WindowLabel is the last reporting window declaration seen.
	WindowLabel string `json:"window_label" yaml:"window_label"`

	// SinceChargeLabel is the payload of the last charge-cycle start marker.
	SinceChargeLabel string `json:"since_charge_label" yaml:"since_charge_label"`
}

// Default labels used when a dump never declares them.
const (
	UnknownStartClock  = "Unknown"
	UnknownWindow      = "Unknown Window"
	UnknownSinceCharge = "Unknown Start"
)

// AppStat is a row from a per-app key=value section.
type AppStat struct {
	ID         string            `json:"uid" yaml:"uid"`
	Name       string            `json:"name" yaml:"name"`
	Power      string            `json:"mah" yaml:"mah"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Window     Window            `json:"window" yaml:"window"`
	Duration   string            `json:"duration" yaml:"duration"`
}

// CollectorEntry is a pipe-delimited collector row.
// Window and Duration are only set for diagnostic collector rows.
type CollectorEntry struct {
	ID         string  `json:"uid" yaml:"uid"`
	Power      string  `json:"mah" yaml:"mah"`
	Foreground string  `json:"foreground" yaml:"foreground"`
	Background string  `json:"background" yaml:"background"`
	Name       string  `json:"name" yaml:"name"`
	Window     *Window `json:"window,omitempty" yaml:"window,omitempty"`
	Duration   string  `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ForegroundEntry is a row from the foreground app current report.
type ForegroundEntry struct {
	ID        string `json:"uid" yaml:"uid"`
	RawCharge string `json:"raw_uah" yaml:"raw_uah"`
	Elapsed   string `json:"seconds" yaml:"seconds"`
	Name      string `json:"name" yaml:"name"`
	Window    Window `json:"window" yaml:"window"`
	Duration  string `json:"duration" yaml:"duration"`
}

// SectionNotes holds annotation lines captured verbatim for display.
type SectionNotes struct {
	Diagnostic []string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
	Foreground []string `json:"foreground,omitempty" yaml:"foreground,omitempty"`
}

// Records are the five record collections produced by the extraction pass.
// Per-app sections are keyed by identifier and overwrite on repeat;
// collector and foreground sections are append-only.
type Records struct {
	Aggregated  map[string]*AppStat
	Background  map[string]*AppStat
	Diagnostic  []CollectorEntry
	SinceCharge []CollectorEntry
	Foreground  []ForegroundEntry
	Notes       SectionNotes
}

// NewRecords returns empty record collections.
func NewRecords() *Records {
	return &Records{
		Aggregated: make(map[string]*AppStat),
		Background: make(map[string]*AppStat),
	}
}

// Count returns the total number of records across all sections.
func (r *Records) Count() int {
	return len(r.Aggregated) + len(r.Background) + len(r.Diagnostic) +
		len(r.SinceCharge) + len(r.Foreground)
}
