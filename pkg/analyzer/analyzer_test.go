package analyzer

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

var sampleDump = filepath.Join("..", "..", "testdata", "dumps", "sample.txt")

func analyzeSample(t *testing.T, opts ...AnalyzerOption) *AnalysisResult {
	t.Helper()

	a, err := NewAnalyzer(config.Default(), opts...)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), parser.FileOpener(sampleDump))
	require.NoError(t, err)
	return result
}

func TestNewAnalyzer_RequiresValidatedConfig(t *testing.T) {
	_, err := NewAnalyzer(&config.Config{})
	assert.Error(t, err)

	a, err := NewAnalyzer(config.Default())
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestParserOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Attributes.Keys = []string{"cpu", "wake"}
	opts := ParserOptions(cfg)

	assert.Equal(t, cfg.Markers.Aggregated, opts.Markers.Aggregated)
	assert.Equal(t, cfg.Markers.DumpBoundary, opts.Markers.DumpBoundary)
	assert.Equal(t, cfg.Notes.MaxLines, opts.MaxNotes)
	assert.Equal(t, cfg.Timestamps.Unknown, opts.Durations.Unknown)
	assert.True(t, opts.Attributes.Allows("cpu", "1m 2s"))
	assert.False(t, opts.Attributes.Allows("unlisted", "1"))
	assert.False(t, opts.Attributes.Allows("cpu", "a,b"))
}

func TestParserOptions_DefaultConfigMatchesParserDefaults(t *testing.T) {
	got := ParserOptions(config.Default())
	want := parser.DefaultOptions()

	assert.Equal(t, want.Markers, got.Markers)
	assert.Equal(t, want.NamePattern.String(), got.NamePattern.String())
	assert.Equal(t, want.IdentifierPattern.String(), got.IdentifierPattern.String())
	assert.Equal(t, want.Attributes.Value.String(), got.Attributes.Value.String())
	assert.Equal(t, want.Durations, got.Durations)
	assert.Equal(t, want.MaxNotes, got.MaxNotes)
}

func TestParserOptions_EmptyKeysAllowsAny(t *testing.T) {
	opts := ParserOptions(config.Default())
	assert.Nil(t, opts.Attributes.Keys)
	assert.True(t, opts.Attributes.Allows("anything", "1"))
	assert.False(t, opts.Attributes.Allows("anything", "x;y"))
}

func TestAnalyze_SampleDump(t *testing.T) {
	result := analyzeSample(t, WithSource(sampleDump, 1234))
	tables := result.Tables

	require.Len(t, tables.Aggregated, 4)
	assert.Equal(t, []string{"10145", "10123", "1000", "10201"}, ids(tables.Aggregated))
	assert.Equal(t, "com.example.maps", tables.Aggregated[0].Name)
	assert.Equal(t, "50.0", tables.Aggregated[1].Power)
	assert.Equal(t, "System:1000", tables.Aggregated[2].Name)
	assert.Equal(t, "System:10201", tables.Aggregated[3].Name)
	assert.Equal(t, "2h 30m", tables.Aggregated[0].Duration)

	assert.Equal(t, []string{"10145", "10200"}, ids(tables.Background))

	diagIDs := make([]string, len(tables.Diagnostic))
	for i, e := range tables.Diagnostic {
		diagIDs[i] = e.ID
	}
	assert.Equal(t, []string{"10200", "10145", "10123"}, diagIDs)
	assert.Equal(t, "1h 30m", tables.Diagnostic[0].Duration)

	require.Len(t, tables.SinceCharge, 3)
	assert.Equal(t, "80.5", tables.SinceCharge[0].Power)
	assert.Equal(t, "41.0", tables.SinceCharge[2].Power)

	fgIDs := make([]string, len(tables.Foreground))
	for i, r := range tables.Foreground {
		fgIDs[i] = r.ID
	}
	assert.Equal(t, []string{"10145", "10123", "10200"}, fgIDs)
	assert.Equal(t, "com.example.music", tables.Foreground[2].Name)

	require.NotNil(t, tables.Peak)
	assert.Equal(t, "10123", tables.Peak.ID)
	assert.Equal(t, "com.example.mail", tables.Peak.Name)
	assert.InDelta(t, 12960000.0, tables.Peak.ProjectedHourly, 1e-6)

	meta := result.Metadata
	assert.Equal(t, sampleDump, meta.Source)
	assert.Equal(t, int64(1234), meta.SizeBytes)
	assert.Equal(t, "2024-01-01 08:00:00", meta.Dump.StartClock)
	assert.Equal(t, "2024-01-01 07:45:00", meta.Dump.SinceChargeLabel)
	assert.Equal(t, 3, meta.Identifiers)
	assert.Equal(t, 43, meta.Extraction.LinesScanned)
	assert.False(t, meta.EndTime.Before(meta.StartTime))
	assert.GreaterOrEqual(t, meta.Duration().Nanoseconds(), int64(0))
}

func TestAnalyze_WithStartTime(t *testing.T) {
	start := time.Now().Add(-3 * time.Second)

	meta := analyzeSample(t, WithStartTime(start)).Metadata

	assert.True(t, meta.StartTime.Equal(start))
	assert.GreaterOrEqual(t, meta.Duration(), 3*time.Second)
}

func TestAnalyze_Deterministic(t *testing.T) {
	first := analyzeSample(t)
	for i := 0; i < 5; i++ {
		again := analyzeSample(t)
		assert.Equal(t, first.Tables, again.Tables)
		assert.Equal(t, first.Notes, again.Notes)
	}
}

func TestAnalyze_LogsProgress(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	analyzeSample(t, WithLogger(log), WithSource(sampleDump, 3*1024*1024/2))

	out := buf.String()
	assert.Contains(t, out, "Scanning 1.5MB dump")
	assert.Contains(t, out, "Extracting records")
	assert.NotContains(t, out, "Extraction pass complete")
}

func TestAnalyze_EmptyDump(t *testing.T) {
	a, err := NewAnalyzer(config.Default())
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), parser.StringOpener("empty", ""))
	require.NoError(t, err)

	assert.Empty(t, result.Tables.Aggregated)
	assert.Empty(t, result.Tables.Foreground)
	assert.Nil(t, result.Tables.Peak)
	assert.Equal(t, parser.UnknownStartClock, result.Metadata.Dump.StartClock)
}

func TestAnalyze_OpenErrorPropagates(t *testing.T) {
	a, err := NewAnalyzer(config.Default())
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), parser.FileOpener(filepath.Join(t.TempDir(), "missing.txt")))
	require.Error(t, err)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	a, err := NewAnalyzer(config.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Analyze(ctx, parser.FileOpener(sampleDump))
	assert.ErrorIs(t, err, context.Canceled)
}
