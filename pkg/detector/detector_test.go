package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/powerdump/pkg/config"
	"github.com/ccollicutt/powerdump/pkg/parser"
)

var sampleDump = filepath.Join("..", "..", "testdata", "dumps", "sample.txt")

func TestDetector_DetectFromFile_SampleDump(t *testing.T) {
	result, err := New().DetectFromFile(context.Background(), sampleDump)
	require.NoError(t, err)

	assert.Equal(t, 43, result.SampledLines)
	assert.Equal(t, 4, result.Boundaries)
	assert.Equal(t, 2, result.Windows)
	assert.Equal(t, 4, result.Names)
	assert.Equal(t, 5, result.Identifiers)
	assert.Equal(t, 6, result.Timestamps)
	assert.Equal(t, 6, result.Parsed)
	assert.True(t, result.HasSections())
	assert.Empty(t, result.Missing())

	want := []struct {
		state parser.State
		line  int
	}{
		{parser.StateAggregated, 17},
		{parser.StateBackground, 23},
		{parser.StateCollectorDiagnostic, 27},
		{parser.StateCollectorSinceCharge, 33},
		{parser.StateForeground, 37},
	}
	require.Len(t, result.Sections, len(want))
	for i, w := range want {
		s := result.Sections[i]
		assert.Equal(t, w.state, s.State)
		assert.Equal(t, 1, s.Count, s.State.String())
		assert.Equal(t, w.line, s.FirstLine, s.State.String())
	}
	assert.Equal(t, "Per-app stats:", result.Sections[0].SampleLine)

	best := result.BestMatch(PrecisionSeconds)
	require.NotNil(t, best)
	assert.Equal(t, "Datetime with seconds", best.Format.Name)
	assert.Equal(t, 4, best.MatchCount)
	assert.InDelta(t, 4.0/6.0, best.Confidence, 1e-9)

	minutes := result.BestMatch(PrecisionMinutes)
	require.NotNil(t, minutes)
	assert.Equal(t, "2006-01-02 15:04", minutes.Format.Layout)
	assert.Equal(t, 2, minutes.MatchCount)

	assert.Empty(t, result.AmbiguityNote)
}

func TestDetector_DetectFromLines_MissingSections(t *testing.T) {
	lines := []string{
		"DUMP OF SERVICE batterystats:",
		"  Per-app stats:",
		"    10123: 1.0 (cpu=1s)",
	}

	result := New().DetectFromLines(lines)

	assert.True(t, result.HasSections())
	assert.Equal(t, []parser.State{
		parser.StateBackground,
		parser.StateCollectorDiagnostic,
		parser.StateCollectorSinceCharge,
		parser.StateForeground,
	}, result.Missing())
	assert.False(t, result.HasMatch())
	assert.Zero(t, result.Timestamps)
}

func TestDetector_DetectFromLines_Empty(t *testing.T) {
	result := New().DetectFromLines(nil)

	assert.Zero(t, result.SampledLines)
	assert.False(t, result.HasSections())
	assert.False(t, result.HasMatch())
	assert.Nil(t, result.BestMatch(PrecisionSeconds))
	assert.Len(t, result.Missing(), 5)
}

func TestDetector_DetectFromLines_Milliseconds(t *testing.T) {
	lines := []string{
		"Stats from 2024-01-15 10:30:00.123 to 2024-01-15 11:30:00.456",
	}

	result := New().DetectFromLines(lines)

	best := result.BestMatch(PrecisionSeconds)
	require.NotNil(t, best)
	// Both layouts accept a fractional part; the more specific one wins.
	assert.Equal(t, "Datetime with milliseconds", best.Format.Name)
	assert.Equal(t, 1.0, best.Confidence)
}

func TestDetector_DetectFromLines_AmbiguousFormat(t *testing.T) {
	lines := []string{
		"Start clock time: 01/05/2024 10:30:00",
		"Stats from 01/05/2024 10:30:00 to 01/05/2024 11:30:00",
	}

	result := New().DetectFromLines(lines)

	require.True(t, result.HasMatch())
	assert.True(t, result.Matches[0].Format.Ambiguous)
	assert.NotEmpty(t, result.AmbiguityNote)
}

func TestDetector_UnknownTimestampsIgnored(t *testing.T) {
	lines := []string{
		"Start clock time: Unknown",
		"Stats from unknown",
	}

	result := New().DetectFromLines(lines)
	assert.Equal(t, 1, result.Windows)
	assert.Zero(t, result.Timestamps)
}

func TestDetector_WithParserOptions(t *testing.T) {
	opts := parser.DefaultOptions()
	opts.Markers.Foreground = "#fg"

	result := New(WithParserOptions(opts)).DetectFromLines([]string{"#fg report"})
	assert.Equal(t, 1, result.Sections[4].Count)
	assert.Equal(t, "#fg", result.Sections[4].Marker)
}

func TestDetector_WithSampleSize(t *testing.T) {
	d := New(WithSampleSize(50))
	assert.Equal(t, 50, d.sampleSize)

	d = New(WithSampleSize(-1))
	assert.Equal(t, 0, d.sampleSize)
}

func TestDetector_WithFormats(t *testing.T) {
	eu := &TimestampFormat{Name: "European", Layout: "02/01/2006 15:04", Precision: PrecisionMinutes}
	d := New(WithFormats(eu))
	require.Len(t, d.formats, 1)

	result := d.DetectFromLines([]string{"Stats from 25/12/2024 10:00 to 25/12/2024 11:00"})
	best := result.BestMatch(PrecisionMinutes)
	require.NotNil(t, best)
	assert.Equal(t, "European", best.Format.Name)
	assert.Equal(t, 2, best.MatchCount)

	d = New(WithFormats())
	assert.Len(t, d.formats, len(DefaultFormats()))
}

func TestDetector_ParsedCountsEachTimestampOnce(t *testing.T) {
	seconds := &TimestampFormat{Name: "first", Layout: "2006-01-02 15:04:05", Precision: PrecisionSeconds}
	same := &TimestampFormat{Name: "second", Layout: "2006-01-02 15:04:05", Precision: PrecisionMinutes}

	result, err := New(WithFormats(seconds, same)).DetectFromFile(context.Background(), sampleDump)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Timestamps)
	assert.Equal(t, 4, result.Parsed)
	for _, m := range result.Matches {
		assert.Equal(t, 4, m.MatchCount, m.Format.Name)
	}
}

func TestDetector_DetectFromFile_SampleSizeLimits(t *testing.T) {
	result, err := New(WithSampleSize(10)).DetectFromFile(context.Background(), sampleDump)
	require.NoError(t, err)

	assert.Equal(t, 10, result.SampledLines)
	assert.False(t, result.HasSections())
	assert.Equal(t, 2, result.Names)
}

func TestDetector_DetectFromFile_TempFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "dump.txt")
	content := "Stats from 2024-01-15 10:30 to 2024-01-15 11:00\r\n[Foreground App Current Report]\r\n"
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o644))

	result, err := New().DetectFromFile(context.Background(), tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sections[4].Count)
	assert.Equal(t, "[Foreground App Current Report]", result.Sections[4].SampleLine)
	require.NotNil(t, result.BestMatch(PrecisionMinutes))
	assert.Nil(t, result.BestMatch(PrecisionSeconds))
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	_, err := New().DetectFromFile(context.Background(), "/nonexistent/dump.txt")
	assert.Error(t, err)
}

func TestDetectionResult_SuggestConfig(t *testing.T) {
	lines := []string{
		"Stats from 01/05/2024 10:30 to 01/05/2024 11:30",
	}
	result := New().DetectFromLines(lines)

	base := config.DefaultConfig()
	cfg := result.SuggestConfig(base)

	assert.Equal(t, "01/02/2006 15:04", cfg.Timestamps.LayoutMinutes)
	assert.Equal(t, config.DefaultLayoutSeconds, cfg.Timestamps.LayoutSeconds)
	assert.Equal(t, config.DefaultLayoutMinutes, base.Timestamps.LayoutMinutes, "base must not change")
	require.NoError(t, config.Validate(cfg))
}

func TestDefaultFormats(t *testing.T) {
	formats := DefaultFormats()
	require.NotEmpty(t, formats)

	names := make(map[string]bool)
	for _, f := range formats {
		assert.False(t, names[f.Name], "duplicate format %q", f.Name)
		names[f.Name] = true

		for _, ex := range f.Examples {
			d := New()
			d.formats = []*TimestampFormat{f}
			result := d.DetectFromLines([]string{"Stats from " + ex})
			assert.True(t, result.HasMatch(), "%s should parse its example %q", f.Name, ex)
		}
	}
}

func TestPrecision_String(t *testing.T) {
	assert.Equal(t, "seconds", PrecisionSeconds.String())
	assert.Equal(t, "minutes", PrecisionMinutes.String())
}
