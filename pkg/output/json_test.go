package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	require.NotNil(t, f)
	assert.Equal(t, "json", f.Name())
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	report := createTestReport()

	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), report, &buf))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed), "output is not valid JSON")

	assert.Equal(t, report.RunID, parsed["run_id"])

	summary := parsed["summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["aggregated"])
	assert.EqualValues(t, 43, summary["lines_scanned"])

	tables := parsed["tables"].(map[string]interface{})
	fg := tables["foreground"].([]interface{})
	require.Len(t, fg, 1)
	row := fg[0].(map[string]interface{})
	// Embedded entry fields are flattened next to the derived figures.
	assert.Equal(t, "10123", row["uid"])
	assert.Equal(t, "3600000", row["raw_uah"])
	assert.EqualValues(t, 12960000, row["projected_hourly"])

	peak := tables["peak"].(map[string]interface{})
	assert.Equal(t, "com.example.mail", peak["name"])

	meta := parsed["metadata"].(map[string]interface{})
	assert.Equal(t, "2024-01-01 08:00:00", meta["start_clock"])
	assert.Equal(t, "powerdump.yaml", meta["config_file"])
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})
	report := createTestReport()

	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), report, &buf))

	var parsed Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, report.Summary.Aggregated, parsed.Aggregated)
	assert.Equal(t, report.Summary.Foreground, parsed.Foreground)
	require.NotNil(t, parsed.Peak)
	assert.Equal(t, "10123", parsed.Peak.ID)

	assert.NotContains(t, buf.String(), "tables")
}

func TestJSONFormatter_EmptyReport(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), &Report{}, &buf))
	assert.NotContains(t, buf.String(), `"peak"`)
}
