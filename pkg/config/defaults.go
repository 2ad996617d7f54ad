package config

import (
	"os"
	"strings"

	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Default values for configuration. Dump markers, patterns and layouts
// come from the parser.
const (
	DefaultAggregatedMarker   = parser.DefaultAggregatedMarker
	DefaultBackgroundMarker   = parser.DefaultBackgroundMarker
	DefaultDiagnosticMarker   = parser.DefaultDiagnosticMarker
	DefaultSinceChargeMarker  = parser.DefaultSinceChargeMarker
	DefaultForegroundMarker   = parser.DefaultForegroundMarker
	DefaultDumpBoundaryMarker = parser.DefaultDumpBoundaryMarker
	DefaultWindowMarker       = parser.DefaultWindowMarker
	DefaultStartClockMarker   = parser.DefaultStartClockMarker
	DefaultNamePattern        = parser.DefaultNamePattern
	DefaultIdentifierPattern  = parser.DefaultIdentifierPattern
	DefaultValuePattern       = parser.DefaultValuePattern
	DefaultUnknownTimestamp   = parser.UnknownTimestamp
	DefaultLayoutSeconds      = parser.LayoutSeconds
	DefaultLayoutMinutes      = parser.LayoutMinutes
	DefaultMaxNotes           = parser.DefaultMaxNotes
	DefaultTableWidth         = 180
	DefaultNameWidth          = 60
	DefaultAttributeWidth     = 12
)

// Environment variable names.
const (
	EnvAttributeKeys    = "POWERDUMP_ATTRIBUTE_KEYS"
	EnvUnknownTimestamp = "POWERDUMP_UNKNOWN_TIMESTAMP"
)

// DefaultConfig returns a configuration tuned for Samsung batterystats dumps.
func DefaultConfig() *Config {
	return &Config{
		Markers: MarkerConfig{
			Aggregated:          DefaultAggregatedMarker,
			Background:          DefaultBackgroundMarker,
			CollectorDiagnostic: DefaultDiagnosticMarker,
			SinceCharge:         DefaultSinceChargeMarker,
			Foreground:          DefaultForegroundMarker,
			DumpBoundary:        DefaultDumpBoundaryMarker,
			Window:              DefaultWindowMarker,
			StartClock:          DefaultStartClockMarker,
			NamePattern:         DefaultNamePattern,
			IdentifierPattern:   DefaultIdentifierPattern,
		},
		Attributes: AttributeConfig{
			ValuePattern: DefaultValuePattern,
		},
		Timestamps: TimestampConfig{
			Unknown:       DefaultUnknownTimestamp,
			LayoutSeconds: DefaultLayoutSeconds,
			LayoutMinutes: DefaultLayoutMinutes,
		},
		Tables: TableConfig{
			Width:     DefaultTableWidth,
			NameWidth: DefaultNameWidth,
			AttributeColumns: []ColumnConfig{
				{Key: "fgTime", Title: "FG Time", Width: 12},
				{Key: "bgTime", Title: "BG Time", Width: 12},
				{Key: "cpu", Title: "CPU", Width: 10},
				{Key: "wake", Title: "Wake", Width: 10},
				{Key: "mactive", Title: "Radio", Width: 10},
			},
		},
		Notes: NotesConfig{
			MaxLines: DefaultMaxNotes,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if keys := os.Getenv(EnvAttributeKeys); keys != "" {
		c.Attributes.Keys = splitList(keys)
	}
	if unknown := os.Getenv(EnvUnknownTimestamp); unknown != "" {
		c.Timestamps.Unknown = unknown
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
