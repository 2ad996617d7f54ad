package output

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ccollicutt/powerdump/pkg/config"
)

// Column is an attribute column shown in the per-app tables.
type Column struct {
	Key   string
	Title string
	Width int
}

// Layout controls text table geometry.
type Layout struct {
	// Width is the length of rule lines and the centering width.
	Width int

	// NameWidth is the package name column width; longer names are cut.
	NameWidth int

	// Columns are the attribute columns of Tables 1 and 2.
	Columns []Column
}

// LayoutFromConfig builds a text layout from validated table settings.
func LayoutFromConfig(cfg config.TableConfig) Layout {
	layout := Layout{
		Width:     cfg.Width,
		NameWidth: cfg.NameWidth,
		Columns:   make([]Column, len(cfg.AttributeColumns)),
	}
	for i, c := range cfg.AttributeColumns {
		layout.Columns[i] = Column{Key: c.Key, Title: c.Title, Width: c.Width}
	}
	return layout
}

// DefaultLayout returns the layout of the default configuration.
func DefaultLayout() Layout {
	return LayoutFromConfig(config.DefaultConfig().Tables)
}

func (l Layout) normalized() Layout {
	if l.Width <= 0 {
		l.Width = config.DefaultTableWidth
	}
	if l.NameWidth <= 1 {
		l.NameWidth = config.DefaultNameWidth
	}
	return l
}

// cell is one column value and the display width it is padded to.
// A zero width leaves the value unpadded.
type cell struct {
	text  string
	width int
}

// joinCells renders cells separated by " | ", padding by display width.
// Trailing spaces are dropped.
func joinCells(cells []cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if c.width > 0 {
			parts[i] = runewidth.FillRight(c.text, c.width)
		} else {
			parts[i] = c.text
		}
	}
	return strings.TrimRight(strings.Join(parts, " | "), " ")
}

// truncateName cuts name to one less than the column width, so a full
// column still leaves a space before the separator.
func truncateName(name string, width int) string {
	return runewidth.Truncate(name, width-1, "")
}

// center places s in the middle of width columns. Only leading padding is
// emitted.
func center(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}
