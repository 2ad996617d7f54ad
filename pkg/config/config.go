package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
// An empty path yields the validated defaults.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the default configuration, validated and compiled.
func Default() *Config {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Marshal renders a configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Validate checks a configuration for errors and compiles regex patterns.
func Validate(cfg *Config) error {
	if err := validateMarkers(&cfg.Markers); err != nil {
		return fmt.Errorf("markers: %w", err)
	}

	if err := validateAttributes(&cfg.Attributes); err != nil {
		return fmt.Errorf("attributes: %w", err)
	}

	if err := validateTimestamps(&cfg.Timestamps); err != nil {
		return fmt.Errorf("timestamps: %w", err)
	}

	if err := validateTables(&cfg.Tables); err != nil {
		return fmt.Errorf("tables: %w", err)
	}

	if cfg.Notes.MaxLines < 0 {
		return errors.New("notes: max_lines must be >= 0")
	}

	return nil
}

func validateMarkers(m *MarkerConfig) error {
	required := []struct {
		name  string
		value string
	}{
		{"aggregated", m.Aggregated},
		{"background", m.Background},
		{"collector_diagnostic", m.CollectorDiagnostic},
		{"since_charge", m.SinceCharge},
		{"foreground", m.Foreground},
		{"dump_boundary", m.DumpBoundary},
		{"window", m.Window},
		{"start_clock", m.StartClock},
	}
	seen := make(map[string]string, len(required))
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
		if other, ok := seen[r.value]; ok {
			return fmt.Errorf("%s duplicates the %s marker %q", r.name, other, r.value)
		}
		seen[r.value] = r.name
	}

	re, err := compileCapturing(m.NamePattern)
	if err != nil {
		return fmt.Errorf("name_pattern: %w", err)
	}
	m.compiledNamePattern = re

	re, err = compileCapturing(m.IdentifierPattern)
	if err != nil {
		return fmt.Errorf("identifier_pattern: %w", err)
	}
	m.compiledIdentifierPattern = re

	return nil
}

func validateAttributes(a *AttributeConfig) error {
	if a.ValuePattern == "" {
		return errors.New("value_pattern is required")
	}

	re, err := regexp.Compile(a.ValuePattern)
	if err != nil {
		return fmt.Errorf("invalid value_pattern: %w", err)
	}
	a.compiledValuePattern = re

	for i, k := range a.Keys {
		if k == "" {
			return fmt.Errorf("keys[%d] is empty", i)
		}
	}

	return nil
}

func validateTimestamps(ts *TimestampConfig) error {
	if ts.Unknown == "" {
		return errors.New("unknown is required")
	}
	if ts.LayoutSeconds == "" {
		return errors.New("layout_seconds is required")
	}
	if ts.LayoutMinutes == "" {
		return errors.New("layout_minutes is required")
	}
	return nil
}

func validateTables(t *TableConfig) error {
	if t.Width <= 0 {
		t.Width = DefaultTableWidth
	}
	if t.NameWidth <= 0 {
		t.NameWidth = DefaultNameWidth
	}

	for i := range t.AttributeColumns {
		col := &t.AttributeColumns[i]
		if col.Key == "" {
			return fmt.Errorf("attribute_columns[%d]: key is required", i)
		}
		if col.Title == "" {
			col.Title = col.Key
		}
		if col.Width <= 0 {
			col.Width = DefaultAttributeWidth
		}
	}

	return nil
}

func compileCapturing(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, errors.New("pattern is required")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	if re.NumSubexp() < 1 {
		return nil, errors.New("pattern must have at least one capture group")
	}

	return re, nil
}
