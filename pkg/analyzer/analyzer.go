package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Analyzer runs the identifier pass, the extraction pass and aggregation
// over a dump.
type Analyzer struct {
	cfg  *config.Config
	opts parser.Options

	// Options
	log       zerolog.Logger
	source    string
	sizeBytes int64
	startTime time.Time
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger used for pass progress.
func WithLogger(log zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.log = log
	}
}

// WithSource records the dump path and size in the result metadata.
func WithSource(path string, sizeBytes int64) AnalyzerOption {
	return func(a *Analyzer) {
		a.source = path
		a.sizeBytes = sizeBytes
	}
}

// WithStartTime sets the run start recorded in the result metadata, so
// work done before Analyze counts toward the run duration.
func WithStartTime(t time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.startTime = t
	}
}

// NewAnalyzer creates a new analyzer from a validated configuration.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if cfg.Markers.CompiledNamePattern() == nil || cfg.Attributes.CompiledValuePattern() == nil {
		return nil, fmt.Errorf("configuration has not been validated")
	}

	a := &Analyzer{
		cfg:  cfg,
		opts: ParserOptions(cfg),
		log:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// ParserOptions translates a validated configuration into parser options.
func ParserOptions(cfg *config.Config) parser.Options {
	m := cfg.Markers

	var keys map[string]bool
	if len(cfg.Attributes.Keys) > 0 {
		keys = make(map[string]bool, len(cfg.Attributes.Keys))
		for _, k := range cfg.Attributes.Keys {
			keys[k] = true
		}
	}

	return parser.Options{
		Markers: parser.Markers{
			Aggregated:          m.Aggregated,
			Background:          m.Background,
			CollectorDiagnostic: m.CollectorDiagnostic,
			SinceCharge:         m.SinceCharge,
			Foreground:          m.Foreground,
			DumpBoundary:        m.DumpBoundary,
			Window:              m.Window,
			StartClock:          m.StartClock,
		},
		NamePattern:       m.CompiledNamePattern(),
		IdentifierPattern: m.CompiledIdentifierPattern(),
		Attributes: parser.AttributeFilter{
			Keys:  keys,
			Value: cfg.Attributes.CompiledValuePattern(),
		},
		Durations: parser.DurationCalculator{
			Unknown:       cfg.Timestamps.Unknown,
			LayoutSeconds: cfg.Timestamps.LayoutSeconds,
			LayoutMinutes: cfg.Timestamps.LayoutMinutes,
		},
		MaxNotes: cfg.Notes.MaxLines,
	}
}

// Analyze runs all passes. open is called once per pass so the dump is
// streamed twice rather than held in memory.
func (a *Analyzer) Analyze(ctx context.Context, open parser.Opener) (*AnalysisResult, error) {
	start := a.startTime
	if start.IsZero() {
		start = time.Now()
	}
	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			Source:    a.source,
			SizeBytes: a.sizeBytes,
			StartTime: start,
		},
	}

	a.log.Info().
		Str("source", a.source).
		Float64("size_mb", float64(a.sizeBytes)/(1024*1024)).
		Msgf("Scanning %.1fMB dump", float64(a.sizeBytes)/(1024*1024))

	resolution, err := a.resolve(ctx, open)
	if err != nil {
		return nil, err
	}
	result.Metadata.Dump = resolution.Metadata
	result.Metadata.Identifiers = len(resolution.Identifiers)
	a.log.Debug().
		Int("lines", resolution.LinesScanned).
		Int("identifiers", len(resolution.Identifiers)).
		Msg("Identifier pass complete")

	a.log.Info().Msg("Extracting records")
	extraction, err := a.extract(ctx, open, resolution.Identifiers)
	if err != nil {
		return nil, err
	}
	result.Metadata.Extraction = extraction.Stats
	result.Notes = extraction.Records.Notes
	a.log.Debug().
		Int("lines", extraction.Stats.LinesScanned).
		Int("matched", extraction.Stats.LinesMatched).
		Int("windows", extraction.Stats.Windows).
		Int("records", extraction.Records.Count()).
		Msg("Extraction pass complete")
	if extraction.Stats.LinesSkipped > 0 {
		a.log.Debug().
			Int("skipped", extraction.Stats.LinesSkipped).
			Int("max_bytes", parser.MaxLineSize).
			Msg("Skipped oversized lines")
	}

	tables, err := Aggregate(extraction.Records, a.opts.Durations)
	if err != nil {
		return nil, fmt.Errorf("aggregating records: %w", err)
	}
	result.Tables = *tables

	result.Metadata.EndTime = time.Now()

	return result, nil
}

func (a *Analyzer) resolve(ctx context.Context, open parser.Opener) (*parser.Resolution, error) {
	src, err := open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return parser.ResolveIdentifiers(ctx, src, a.opts)
}

func (a *Analyzer) extract(ctx context.Context, open parser.Opener, ids parser.IdentifierMap) (*parser.Extraction, error) {
	src, err := open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return parser.ExtractRecords(ctx, src, ids, a.opts)
}
