package detector

// Precision says which configured layout slot a format fills. Dump
// timestamps are parsed with the seconds layout when the time part has two
// or more colons, and with the minutes layout otherwise.
type Precision int

const (
	PrecisionSeconds Precision = iota
	PrecisionMinutes
)

// String returns the precision name.
func (p Precision) String() string {
	if p == PrecisionMinutes {
		return "minutes"
	}
	return "seconds"
}

// TimestampFormat represents a known dump timestamp format for detection.
type TimestampFormat struct {
	Name      string    // Human-readable name
	Layout    string    // Go time layout for parsing
	Precision Precision // Layout slot this format fills
	Examples  []string  // Example timestamps
	Ambiguous bool      // True if format has date ordering ambiguity (MM/DD vs DD/MM)
}

// DefaultFormats returns the built-in timestamp formats to detect.
// Every layout separates date and time with a single space.
func DefaultFormats() []*TimestampFormat {
	return []*TimestampFormat{
		{
			Name:      "Datetime with seconds",
			Layout:    "2006-01-02 15:04:05",
			Precision: PrecisionSeconds,
			Examples:  []string{"2024-01-01 10:00:00"},
		},
		{
			Name:      "Datetime with milliseconds",
			Layout:    "2006-01-02 15:04:05.000",
			Precision: PrecisionSeconds,
			Examples:  []string{"2024-01-01 10:00:00.123"},
		},
		{
			Name:      "Datetime",
			Layout:    "2006-01-02 15:04",
			Precision: PrecisionMinutes,
			Examples:  []string{"2024-01-01 10:00"},
		},
		{
			Name:      "US date format with seconds (MM/DD/YYYY)",
			Layout:    "01/02/2006 15:04:05",
			Precision: PrecisionSeconds,
			Examples:  []string{"01/15/2024 10:30:00"},
			Ambiguous: true,
		},
		{
			Name:      "US date format (MM/DD/YYYY)",
			Layout:    "01/02/2006 15:04",
			Precision: PrecisionMinutes,
			Examples:  []string{"01/15/2024 10:30"},
			Ambiguous: true,
		},
	}
}
