package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/powerdump/pkg/config"
)

func statuses(results []DiagnosticResult) map[string]string {
	m := make(map[string]string, len(results))
	for _, r := range results {
		m[r.Check] = r.Status
	}
	return m
}

func TestNewDiagnoseCommand(t *testing.T) {
	cmd := NewDiagnoseCommand(newGlobals(nil))

	assert.Equal(t, "diagnose <dump-file>", cmd.Use)
	assert.Contains(t, cmd.Long, "Section markers")
}

func TestRunDiagnose_SampleDump(t *testing.T) {
	results := runDiagnose(context.Background(), "", sampleDump)

	assert.Equal(t, map[string]string{
		"Config":            StatusOK,
		"Dump File":         StatusOK,
		"Section Markers":   StatusOK,
		"Timestamp Layouts": StatusOK,
		"Declarations":      StatusOK,
	}, statuses(results))
}

func TestDiagnoseCommand_Output(t *testing.T) {
	out, err := execute(t, NewDiagnoseCommand(newGlobals(nil)), sampleDump)
	require.NoError(t, err)

	assert.Contains(t, out, "=== powerdump Diagnostics ===")
	assert.Contains(t, out, "[PASS] Section Markers")
	assert.Contains(t, out, "Configured layouts parse 6/6 timestamps")
	assert.Contains(t, out, "Summary: 5 passed, 0 warnings, 0 errors")
	assert.Contains(t, out, "Dump and configuration look good!")
	// Details of passing checks are only shown in verbose mode.
	assert.NotContains(t, out, "layout_seconds:")
}

func TestDiagnoseCommand_Verbose(t *testing.T) {
	out, err := execute(t, NewDiagnoseCommand(newGlobals(map[string]any{KeyVerbose: true})), sampleDump)
	require.NoError(t, err)

	assert.Contains(t, out, "- layout_seconds: 2006-01-02 15:04:05")
	assert.Contains(t, out, "- AggregatedStats: line 17 (1 found)")
}

func TestRunDiagnose_MissingConfig(t *testing.T) {
	results := runDiagnose(context.Background(), "/nonexistent/powerdump.yaml", sampleDump)

	require.Len(t, results, 1)
	assert.Equal(t, StatusError, results[0].Status)
	assert.Contains(t, results[0].Message, "Config file not found")
}

func TestRunDiagnose_ConfigDirectory(t *testing.T) {
	results := runDiagnose(context.Background(), t.TempDir(), sampleDump)

	require.Len(t, results, 1)
	assert.Equal(t, "Path is a directory, not a file", results[0].Message)
}

func TestRunDiagnose_InvalidConfig(t *testing.T) {
	cfgPath := writeFile(t, "bad.yaml", "markers: [oops")

	results := runDiagnose(context.Background(), cfgPath, sampleDump)

	require.Len(t, results, 1)
	assert.Equal(t, StatusError, results[0].Status)
	assert.Contains(t, results[0].Message, "Failed to load config")
}

func TestRunDiagnose_MissingDump(t *testing.T) {
	results := runDiagnose(context.Background(), "", "/nonexistent/dump.txt")

	require.Len(t, results, 2)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Contains(t, results[1].Message, "dump file not found")
}

func TestRunDiagnose_EmptyDump(t *testing.T) {
	dump := writeFile(t, "empty.txt", "")

	results := runDiagnose(context.Background(), "", dump)

	require.Len(t, results, 2)
	assert.Equal(t, "Dump file is empty", results[1].Message)
}

func TestRunDiagnose_NoSections(t *testing.T) {
	dump := writeFile(t, "other.txt", "hello\nworld\n")

	results := runDiagnose(context.Background(), "", dump)

	assert.Equal(t, map[string]string{
		"Config":            StatusOK,
		"Dump File":         StatusOK,
		"Section Markers":   StatusError,
		"Timestamp Layouts": StatusWarning,
		"Declarations":      StatusWarning,
	}, statuses(results))
}

func TestRunDiagnose_PartialSections(t *testing.T) {
	dump := writeFile(t, "partial.txt", "Start clock time: 2024-01-01 08:00:00\n  Per-app stats:\n    10123: 1.0\n")

	results := runDiagnose(context.Background(), "", dump)

	for _, r := range results {
		if r.Check == "Section Markers" {
			assert.Equal(t, StatusWarning, r.Status)
			assert.Contains(t, r.Message, "1 of 5 sections found")
			assert.Contains(t, r.Message, "ForegroundReport")
		}
	}
}

func TestRunDiagnose_WrongLayouts(t *testing.T) {
	cfgPath := writeFile(t, "us.yaml", `timestamps:
  layout_seconds: "01/02/2006 15:04:05"
  layout_minutes: "01/02/2006 15:04"
`)

	results := runDiagnose(context.Background(), cfgPath, sampleDump)

	var ts *DiagnosticResult
	for i := range results {
		if results[i].Check == "Timestamp Layouts" {
			ts = &results[i]
		}
	}
	require.NotNil(t, ts)
	assert.Equal(t, StatusError, ts.Status)
	assert.Contains(t, ts.Message, "parse 0/6 timestamps")
	assert.Contains(t, ts.Suggests, "Suggested layout_seconds: 2006-01-02 15:04:05 (Datetime with seconds)")
	assert.Contains(t, ts.Suggests, "Suggested layout_minutes: 2006-01-02 15:04 (Datetime)")
}

func TestRunDiagnose_DuplicateLayoutsNotDoubleCounted(t *testing.T) {
	cfgPath := writeFile(t, "same.yaml", `timestamps:
  layout_seconds: "2006-01-02 15:04:05"
  layout_minutes: "2006-01-02 15:04:05"
`)

	results := runDiagnose(context.Background(), cfgPath, sampleDump)

	var ts *DiagnosticResult
	for i := range results {
		if results[i].Check == "Timestamp Layouts" {
			ts = &results[i]
		}
	}
	require.NotNil(t, ts)
	assert.Equal(t, StatusWarning, ts.Status)
	assert.Contains(t, ts.Message, "parse 4/6 timestamps")
}

func TestConfiguredFormats(t *testing.T) {
	formats := configuredFormats(config.Default())

	require.Len(t, formats, 2)
	assert.Equal(t, config.DefaultLayoutSeconds, formats[0].Layout)
	assert.Equal(t, config.DefaultLayoutMinutes, formats[1].Layout)
}

func TestPrintDiagnostics(t *testing.T) {
	results := []DiagnosticResult{
		{Check: "Test OK", Status: StatusOK, Message: "All good", Details: []string{"hidden"}},
		{Check: "Test Warn", Status: StatusWarning, Message: "Some warning", Details: []string{"shown"}},
		{Check: "Test Error", Status: StatusError, Message: "Some error", Suggests: []string{"Fix it"}},
	}

	var buf bytes.Buffer
	printDiagnostics(&buf, results, false)
	out := buf.String()

	assert.Contains(t, out, "[PASS] Test OK")
	assert.Contains(t, out, "[WARN] Test Warn")
	assert.Contains(t, out, "[FAIL] Test Error")
	assert.Contains(t, out, "      - shown")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "      Hint: Fix it")
	assert.Contains(t, out, "Summary: 1 passed, 1 warnings, 1 errors")
	assert.Contains(t, out, "Fix the errors above before running analysis.")
}
