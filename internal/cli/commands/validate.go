package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/powerdump/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a powerdump configuration file without reading a dump.

Checks:
  - YAML syntax
  - Required markers, and that no two markers are equal
  - Regex pattern validity and capture groups
  - Timestamp layouts
  - Table widths and attribute columns`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, _ = fmt.Fprintf(w, "\nConfiguration valid!\n")
	_, _ = fmt.Fprintf(w, "  Timestamp layouts: %q, %q\n", cfg.Timestamps.LayoutSeconds, cfg.Timestamps.LayoutMinutes)
	if len(cfg.Attributes.Keys) == 0 {
		_, _ = fmt.Fprintf(w, "  Attribute keys:    any\n")
	} else {
		_, _ = fmt.Fprintf(w, "  Attribute keys:    %d\n", len(cfg.Attributes.Keys))
	}
	_, _ = fmt.Fprintf(w, "  Table width:       %d (names %d)\n", cfg.Tables.Width, cfg.Tables.NameWidth)

	_, _ = fmt.Fprintf(w, "\nMarkers:\n")
	for _, m := range []struct{ name, value string }{
		{"aggregated", cfg.Markers.Aggregated},
		{"background", cfg.Markers.Background},
		{"collector_diagnostic", cfg.Markers.CollectorDiagnostic},
		{"since_charge", cfg.Markers.SinceCharge},
		{"foreground", cfg.Markers.Foreground},
		{"dump_boundary", cfg.Markers.DumpBoundary},
	} {
		_, _ = fmt.Fprintf(w, "  %-22s %q\n", m.name, m.value)
	}

	if len(cfg.Tables.AttributeColumns) > 0 {
		_, _ = fmt.Fprintf(w, "\nAttribute columns:\n")
		for i, col := range cfg.Tables.AttributeColumns {
			_, _ = fmt.Fprintf(w, "  %d. %s (%s, width %d)\n", i+1, col.Title, col.Key, col.Width)
		}
	}

	return nil
}
