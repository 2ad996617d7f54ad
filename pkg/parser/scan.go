package parser

import (
	"context"
	"fmt"
	"strings"
)

// ExtractStats counts what the extraction pass saw.
type ExtractStats struct {
	LinesScanned int `json:"lines_scanned" yaml:"lines_scanned"`
	LinesMatched int `json:"lines_matched" yaml:"lines_matched"`
	Transitions  int `json:"transitions" yaml:"transitions"`
	Windows      int `json:"windows" yaml:"windows"`
	LinesSkipped int `json:"lines_skipped" yaml:"lines_skipped"`
}

// Extraction is the output of the extraction pass.
type Extraction struct {
	Records *Records
	Stats   ExtractStats

	// Window is the reporting window active when the input ended.
	Window Window
}

// Extractor is the second pass: it feeds each line to a Classifier and
// runs the extractor for the resulting section on the same line.
type Extractor struct {
	opts       Options
	ids        IdentifierMap
	classifier *Classifier
	records    *Records
	stats      ExtractStats

	// duration is cached per window.
	duration string
}

// NewExtractor creates an extractor that resolves names through ids.
func NewExtractor(ids IdentifierMap, opts Options) *Extractor {
	e := &Extractor{
		opts:       opts,
		ids:        ids,
		classifier: NewClassifier(opts.Markers),
		records:    NewRecords(),
	}
	e.duration = e.durationOf(e.classifier.Window())
	return e
}

// Process classifies and extracts a single line.
func (e *Extractor) Process(line string) {
	e.stats.LinesScanned++

	t := e.classifier.Step(line)
	if t.Marker && t.From != t.To {
		e.stats.Transitions++
	}
	if t.Window != nil {
		e.stats.Windows++
		e.duration = e.durationOf(*t.Window)
	}

	ec := extractContext{
		ids:      e.ids,
		window:   e.classifier.Window(),
		duration: e.duration,
	}

	matched := false
	switch t.To {
	case StateAggregated:
		if stat, ok := extractAppStat(line, ec, e.opts.Attributes); ok {
			e.records.Aggregated[stat.ID] = stat
			matched = true
		}
	case StateBackground:
		if stat, ok := extractAppStat(line, ec, e.opts.Attributes); ok {
			e.records.Background[stat.ID] = stat
			matched = true
		}
	case StateCollectorDiagnostic:
		if entry, ok := extractCollector(line, ec, true); ok {
			e.records.Diagnostic = append(e.records.Diagnostic, entry)
			matched = true
		}
	case StateCollectorSinceCharge:
		if entry, ok := extractCollector(line, ec, false); ok {
			e.records.SinceCharge = append(e.records.SinceCharge, entry)
			matched = true
		}
	case StateForeground:
		if entry, ok := extractForeground(line, ec); ok {
			e.records.Foreground = append(e.records.Foreground, entry)
			matched = true
		}
	}

	if matched {
		e.stats.LinesMatched++
		return
	}
	if !t.Marker && t.Window == nil {
		e.captureNote(t.To, line)
	}
}

// captureNote keeps annotation lines of the diagnostic and foreground sections.
func (e *Extractor) captureNote(state State, line string) {
	note := strings.TrimRight(line, " \t")
	if strings.TrimSpace(note) == "" {
		return
	}

	var notes *[]string
	switch state {
	case StateCollectorDiagnostic:
		notes = &e.records.Notes.Diagnostic
	case StateForeground:
		notes = &e.records.Notes.Foreground
	default:
		return
	}

	if len(*notes) < e.opts.MaxNotes {
		*notes = append(*notes, note)
	}
}

// Result returns the records and statistics gathered so far.
func (e *Extractor) Result() *Extraction {
	return &Extraction{
		Records: e.records,
		Stats:   e.stats,
		Window:  e.classifier.Window(),
	}
}

func (e *Extractor) durationOf(w Window) string {
	return e.opts.Durations.Duration(w.Start, w.End)
}

// ExtractRecords runs the extraction pass over src.
func ExtractRecords(ctx context.Context, src LineSource, ids IdentifierMap, opts Options) (*Extraction, error) {
	e := NewExtractor(ids, opts)

	skipped, err := forEachLine(ctx, src, func(line *Line) {
		e.Process(line.Raw)
	})
	if err != nil {
		return nil, fmt.Errorf("extracting records: %w", err)
	}

	result := e.Result()
	result.Stats.LinesSkipped = skipped
	return result, nil
}
