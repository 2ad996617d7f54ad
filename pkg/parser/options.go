package parser

import (
	"regexp"
)

// Markers are the substrings that classify dump lines.
type Markers struct {
	Aggregated          string
	Background          string
	CollectorDiagnostic string
	SinceCharge         string
	Foreground          string
	DumpBoundary        string
	Window              string
	StartClock          string
}

// Markers and patterns found in Samsung batterystats dumps.
const (
	DefaultAggregatedMarker   = "Per-app stats:"
	DefaultBackgroundMarker   = "Per-app stats in background"
	DefaultDiagnosticMarker   = "[Batterystats Collector]"
	DefaultSinceChargeMarker  = "Stats since last charge from"
	DefaultForegroundMarker   = "[Foreground App Current Report]"
	DefaultDumpBoundaryMarker = "DUMP OF SERVICE"
	DefaultWindowMarker       = "Stats from "
	DefaultStartClockMarker   = "Start clock time:"

	DefaultNamePattern       = `Package \[([^\]]+)\]`
	DefaultIdentifierPattern = `(?:appId|userId)=(\d+)`
	DefaultValuePattern      = `^[\w\s.]+$`

	DefaultMaxNotes = 20
)

// DefaultMarkers returns the markers found in Samsung batterystats dumps.
func DefaultMarkers() Markers {
	return Markers{
		Aggregated:          DefaultAggregatedMarker,
		Background:          DefaultBackgroundMarker,
		CollectorDiagnostic: DefaultDiagnosticMarker,
		SinceCharge:         DefaultSinceChargeMarker,
		Foreground:          DefaultForegroundMarker,
		DumpBoundary:        DefaultDumpBoundaryMarker,
		Window:              DefaultWindowMarker,
		StartClock:          DefaultStartClockMarker,
	}
}

// AttributeFilter selects key=value pairs kept from per-app rows.
type AttributeFilter struct {
	// Keys is an allow-list; nil or empty keeps every key.
	Keys map[string]bool

	// Value must match a trimmed value for the pair to be kept.
	Value *regexp.Regexp
}

// Allows reports whether a key/value pair passes the filter.
func (f AttributeFilter) Allows(key, value string) bool {
	if len(f.Keys) > 0 && !f.Keys[key] {
		return false
	}
	return f.Value == nil || f.Value.MatchString(value)
}

// Options configure both extraction passes.
type Options struct {
	Markers Markers

	// NamePattern and IdentifierPattern capture the declaration payload in group 1.
	NamePattern       *regexp.Regexp
	IdentifierPattern *regexp.Regexp

	Attributes AttributeFilter
	Durations  DurationCalculator

	// MaxNotes caps annotation lines kept per section. Zero disables capture.
	MaxNotes int
}

var (
	defaultNamePattern       = regexp.MustCompile(DefaultNamePattern)
	defaultIdentifierPattern = regexp.MustCompile(DefaultIdentifierPattern)
	defaultValuePattern      = regexp.MustCompile(DefaultValuePattern)
)

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		Markers:           DefaultMarkers(),
		NamePattern:       defaultNamePattern,
		IdentifierPattern: defaultIdentifierPattern,
		Attributes:        AttributeFilter{Value: defaultValuePattern},
		Durations:         DefaultDurationCalculator(),
		MaxNotes:          DefaultMaxNotes,
	}
}
