package parser

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is shown wherever a duration cannot be computed.
const Placeholder = "-"

// Default timestamp layouts, with and without a seconds component.
const (
	LayoutSeconds = "2006-01-02 15:04:05"
	LayoutMinutes = "2006-01-02 15:04"
)

// UnknownTimestamp is the default "no timestamp" sentinel for durations.
const UnknownTimestamp = "Unknown"

// DurationCalculator computes elapsed time between window timestamps.
type DurationCalculator struct {
	// Unknown is the sentinel meaning "no timestamp", compared case-insensitively.
	Unknown string

	// LayoutSeconds and LayoutMinutes are tried based on the colon count
	// in the time portion of the start timestamp.
	LayoutSeconds string
	LayoutMinutes string
}

// DefaultDurationCalculator returns a calculator with the default layouts.
func DefaultDurationCalculator() DurationCalculator {
	return DurationCalculator{
		Unknown:       UnknownTimestamp,
		LayoutSeconds: LayoutSeconds,
		LayoutMinutes: LayoutMinutes,
	}
}

// Duration returns the elapsed time between start and end using the
// default calculator.
func Duration(start, end string) string {
	return DefaultDurationCalculator().Duration(start, end)
}

// Duration formats the elapsed time from start to end as "<H>h <M>m".
// It returns Placeholder when either side is missing, unknown or
// unparseable, or when end precedes start.
func (c DurationCalculator) Duration(start, end string) string {
	from, ok := c.Parse(start)
	if !ok {
		return Placeholder
	}

	to, err := time.Parse(c.layoutFor(strings.TrimSpace(start)), strings.TrimSpace(end))
	if err != nil || c.isUnknown(end) {
		return Placeholder
	}

	elapsed := to.Sub(from)
	if elapsed < 0 {
		return Placeholder
	}

	secs := int64(elapsed / time.Second)
	return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
}

// Parse parses a single timestamp with the layout its own shape selects.
func (c DurationCalculator) Parse(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" || c.isUnknown(ts) {
		return time.Time{}, false
	}

	t, err := time.Parse(c.layoutFor(ts), ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c DurationCalculator) isUnknown(ts string) bool {
	ts = strings.TrimSpace(ts)
	return ts == "" || strings.EqualFold(ts, c.Unknown)
}

// layoutFor picks the seconds layout when the time portion has two colons.
func (c DurationCalculator) layoutFor(ts string) string {
	timePart := ts
	if i := strings.IndexByte(ts, ' '); i >= 0 {
		timePart = ts[i+1:]
	}
	if strings.Count(timePart, ":") >= 2 {
		return c.LayoutSeconds
	}
	return c.LayoutMinutes
}
