// Package detector surveys a dump for the section markers, declarations and
// timestamp formats the analyzer relies on.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// DetectionResult holds the result of surveying a dump.
type DetectionResult struct {
	SampledLines  int            // Number of lines sampled
	Sections      []SectionMatch // One entry per report section, in table order
	Boundaries    int            // Number of dump boundary lines
	Windows       int            // Number of reporting window declarations
	Names         int            // Number of name declaration lines
	Identifiers   int            // Number of identifier declaration lines
	Timestamps    int            // Number of timestamps found in declarations
	Parsed        int            // Timestamps that parse under at least one format
	Matches       []FormatMatch  // Formats that matched, sorted by confidence descending
	AmbiguityNote string         // Warning about date ordering if applicable
}

// SectionMatch records where a report section marker was seen.
type SectionMatch struct {
	State      parser.State
	Marker     string
	Count      int    // Number of marker lines
	FirstLine  int    // 1-based line of the first marker, 0 when absent
	SampleLine string // First marker line, trimmed
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *TimestampFormat
	Confidence float64   // 0.0 to 1.0 (share of timestamps matched)
	MatchCount int       // Number of timestamps that matched
	Sample     string    // Example timestamp that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector surveys dumps using a set of markers and patterns.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
	opts       parser.Options
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize limits the survey to the first n lines. Zero reads the
// whole dump, which is the default since sections may start anywhere.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.sampleSize = n
		}
	}
}

// WithParserOptions sets the markers and declaration patterns to look for.
func WithParserOptions(opts parser.Options) Option {
	return func(d *Detector) {
		d.opts = opts
	}
}

// WithFormats replaces the built-in formats.
func WithFormats(formats ...*TimestampFormat) Option {
	return func(d *Detector) {
		if len(formats) > 0 {
			d.formats = formats
		}
	}
}

// New creates a new Detector with default formats and markers.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats: DefaultFormats(),
		opts:    parser.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile surveys a dump file.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines surveys a slice of dump lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	m := d.opts.Markers
	result := &DetectionResult{
		SampledLines: len(lines),
		Sections: []SectionMatch{
			{State: parser.StateAggregated, Marker: m.Aggregated},
			{State: parser.StateBackground, Marker: m.Background},
			{State: parser.StateCollectorDiagnostic, Marker: m.CollectorDiagnostic},
			{State: parser.StateCollectorSinceCharge, Marker: m.SinceCharge},
			{State: parser.StateForeground, Marker: m.Foreground},
		},
	}

	classifier := parser.NewClassifier(m)
	var timestamps []string

	for i, line := range lines {
		t := classifier.Next(line)

		if t.Marker {
			if t.To == parser.StateNone {
				result.Boundaries++
			} else if s := result.section(t.To); s != nil {
				s.Count++
				if s.FirstLine == 0 {
					s.FirstLine = i + 1
					s.SampleLine = strings.TrimSpace(line)
				}
			}
		}

		if t.Window != nil {
			result.Windows++
			timestamps = append(timestamps, t.Window.Start)
			if t.Window.End != t.Window.Start {
				timestamps = append(timestamps, t.Window.End)
			}
		}
		if t.SinceCharge != nil {
			timestamps = append(timestamps, *t.SinceCharge)
		}
		if _, clock, ok := strings.Cut(line, m.StartClock); ok {
			timestamps = append(timestamps, clock)
		}

		if d.opts.NamePattern != nil && d.opts.NamePattern.MatchString(line) {
			result.Names++
		}
		if d.opts.IdentifierPattern != nil && d.opts.IdentifierPattern.MatchString(line) {
			result.Identifiers++
		}
	}

	d.matchFormats(result, timestamps)
	return result
}

// matchFormats scores every format against the collected timestamps.
func (d *Detector) matchFormats(result *DetectionResult, timestamps []string) {
	type formatStats struct {
		format     *TimestampFormat
		matchCount int
		sample     string
		parsedTime time.Time
	}

	stats := make(map[string]*formatStats)

	for _, ts := range timestamps {
		ts = strings.TrimSpace(ts)
		if ts == "" || strings.EqualFold(ts, d.opts.Durations.Unknown) {
			continue
		}
		result.Timestamps++

		parsedAny := false
		for _, format := range d.formats {
			parsed, err := time.Parse(format.Layout, ts)
			if err != nil {
				continue
			}
			parsedAny = true

			key := format.Name
			if stats[key] == nil {
				stats[key] = &formatStats{
					format:     format,
					sample:     ts,
					parsedTime: parsed,
				}
			}
			stats[key].matchCount++
		}
		if parsedAny {
			result.Parsed++
		}
	}

	if result.Timestamps == 0 {
		return
	}

	for _, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(result.Timestamps),
			MatchCount: s.matchCount,
			Sample:     s.sample,
			ParsedTime: s.parsedTime,
		})
	}

	// Sort by confidence descending, then by layout length (more specific first)
	sort.Slice(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if len(a.Format.Layout) != len(b.Format.Layout) {
			return len(a.Format.Layout) > len(b.Format.Layout)
		}
		return a.Format.Name < b.Format.Name
	})

	if result.Matches[0].Format.Ambiguous {
		result.AmbiguityNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
			"Verify the layout matches your dump. " +
			"For European format (DD/MM/YYYY), use layout: \"02/01/2006 15:04:05\""
	}
}

// sampleFile reads up to sampleSize lines from a dump, or all of it when
// sampleSize is zero.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	src, err := parser.FileOpener(path)()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var lines []string
	for d.sampleSize == 0 || len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sampling %s: %w", path, err)
		}
		lines = append(lines, line.Raw)
	}

	return lines, nil
}

func (r *DetectionResult) section(state parser.State) *SectionMatch {
	for i := range r.Sections {
		if r.Sections[i].State == state {
			return &r.Sections[i]
		}
	}
	return nil
}

// HasSections returns true if at least one report section marker was seen.
func (r *DetectionResult) HasSections() bool {
	for _, s := range r.Sections {
		if s.Count > 0 {
			return true
		}
	}
	return false
}

// Missing returns the sections whose markers never appeared.
func (r *DetectionResult) Missing() []parser.State {
	var missing []parser.State
	for _, s := range r.Sections {
		if s.Count == 0 {
			missing = append(missing, s.State)
		}
	}
	return missing
}

// BestMatch returns the highest confidence match of the given precision,
// or nil if none found.
func (r *DetectionResult) BestMatch(p Precision) *FormatMatch {
	for i := range r.Matches {
		if r.Matches[i].Format.Precision == p {
			return &r.Matches[i]
		}
	}
	return nil
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// SuggestConfig returns a copy of base with timestamp layouts replaced by
// the best detected formats. Slots with no match keep their base layout.
func (r *DetectionResult) SuggestConfig(base *config.Config) *config.Config {
	cfg := *base
	if m := r.BestMatch(PrecisionSeconds); m != nil {
		cfg.Timestamps.LayoutSeconds = m.Format.Layout
	}
	if m := r.BestMatch(PrecisionMinutes); m != nil {
		cfg.Timestamps.LayoutMinutes = m.Format.Layout
	}
	return &cfg
}
