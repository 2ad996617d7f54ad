// Package config provides configuration loading and validation for powerdump.
package config

import (
	"regexp"
)

// Config is the root configuration structure loaded from YAML.
// Every field has a default, so an absent config file is valid.
type Config struct {
	Markers    MarkerConfig    `yaml:"markers"`
	Attributes AttributeConfig `yaml:"attributes"`
	Timestamps TimestampConfig `yaml:"timestamps"`
	Tables     TableConfig     `yaml:"tables"`
	Notes      NotesConfig     `yaml:"notes"`
}

// MarkerConfig holds the substrings and patterns that drive section tracking.
type MarkerConfig struct {
	// Section markers, checked in this order on every line.
	Aggregated          string `yaml:"aggregated"`
	Background          string `yaml:"background"`
	CollectorDiagnostic string `yaml:"collector_diagnostic"`
	SinceCharge         string `yaml:"since_charge"`
	Foreground          string `yaml:"foreground"`
	DumpBoundary        string `yaml:"dump_boundary"`

	// Window is the reporting window declaration marker ("Stats from ...").
	Window string `yaml:"window"`

	// StartClock introduces the log start timestamp shown in the banner.
	StartClock string `yaml:"start_clock"`

	// NamePattern captures an application name in group 1.
	NamePattern string `yaml:"name_pattern"`

	// IdentifierPattern captures a numeric identifier in group 1.
	IdentifierPattern string `yaml:"identifier_pattern"`

	compiledNamePattern       *regexp.Regexp
	compiledIdentifierPattern *regexp.Regexp
}

// CompiledNamePattern returns the pre-compiled name declaration pattern.
func (m *MarkerConfig) CompiledNamePattern() *regexp.Regexp {
	return m.compiledNamePattern
}

// CompiledIdentifierPattern returns the pre-compiled identifier declaration pattern.
func (m *MarkerConfig) CompiledIdentifierPattern() *regexp.Regexp {
	return m.compiledIdentifierPattern
}

// AttributeConfig controls which key=value pairs are kept from per-app rows.
type AttributeConfig struct {
	// Keys is an allow-list of attribute keys. Empty keeps every key.
	Keys []string `yaml:"keys,omitempty"`

	// ValuePattern is matched against each trimmed value; values that do
	// not match are dropped.
	ValuePattern string `yaml:"value_pattern"`

	compiledValuePattern *regexp.Regexp
}

// CompiledValuePattern returns the pre-compiled attribute value pattern.
func (a *AttributeConfig) CompiledValuePattern() *regexp.Regexp {
	return a.compiledValuePattern
}

// TimestampConfig defines how window timestamps are interpreted.
type TimestampConfig struct {
	// Unknown is the sentinel that stands in for a missing timestamp.
	Unknown string `yaml:"unknown"`

	// LayoutSeconds is the Go time layout used when the time portion has seconds.
	LayoutSeconds string `yaml:"layout_seconds"`

	// LayoutMinutes is the Go time layout used when it does not.
	LayoutMinutes string `yaml:"layout_minutes"`
}

// ColumnConfig maps an attribute key to a column in Tables 1 and 2.
type ColumnConfig struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
	Width int    `yaml:"width,omitempty"`
}

// TableConfig controls text rendering.
type TableConfig struct {
	// Width is the total width of rule lines and centered headings.
	Width int `yaml:"width"`

	// NameWidth is the width of the application name column.
	NameWidth int `yaml:"name_width"`

	// AttributeColumns lists the attribute columns for Tables 1 and 2.
	AttributeColumns []ColumnConfig `yaml:"attribute_columns"`
}

// NotesConfig controls capture of section annotation lines.
type NotesConfig struct {
	// MaxLines caps notes per section. Zero disables capture.
	MaxLines int `yaml:"max_lines"`
}
