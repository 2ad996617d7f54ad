package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter renders analysis results in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, yaml).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds run statistics to the text report.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// Layout controls text table widths and attribute columns.
	Layout Layout

	// Elapsed, when set, is read as the closing line is written so the
	// reported execution time covers rendering. Otherwise the report's
	// own duration is used.
	Elapsed func() time.Duration
}

// Formats lists the supported output format names.
var Formats = []string{"text", "json", "yaml"}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "yaml":
		return NewYAMLFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use %s)", name, strings.Join(Formats, ", "))
	}
}
