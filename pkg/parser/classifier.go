package parser

import (
	"strings"
)

// State is the report section the classifier is currently in.
type State int

const (
	StateNone State = iota
	StateAggregated
	StateBackground
	StateCollectorDiagnostic
	StateCollectorSinceCharge
	StateForeground
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateAggregated:
		return "AggregatedStats"
	case StateBackground:
		return "BackgroundStats"
	case StateCollectorDiagnostic:
		return "CollectorDiagnostic"
	case StateCollectorSinceCharge:
		return "CollectorSinceCharge"
	case StateForeground:
		return "ForegroundReport"
	default:
		return "Unknown"
	}
}

// Transition is the result of classifying one line.
type Transition struct {
	// From and To are the states before and after the line.
	From State
	To   State

	// Marker is set when the line carried a section marker.
	Marker bool

	// Window is non-nil when the line declared a new reporting window.
	Window *Window

	// SinceCharge is non-nil when the line started a charge cycle.
	SinceCharge *string
}

// sectionMarker binds a marker substring to the state it enters.
type sectionMarker struct {
	marker string
	state  State
}

// Classifier tracks the current section and reporting window while lines
// are consumed in order.
type Classifier struct {
	markers     Markers
	sections    []sectionMarker
	state       State
	window      Window
	sinceCharge string
}

// NewClassifier creates a classifier in StateNone with an unknown window.
func NewClassifier(markers Markers) *Classifier {
	return &Classifier{
		markers: markers,
		// Order is priority: the first marker found on a line wins.
		sections: []sectionMarker{
			{markers.Aggregated, StateAggregated},
			{markers.Background, StateBackground},
			{markers.CollectorDiagnostic, StateCollectorDiagnostic},
			{markers.SinceCharge, StateCollectorSinceCharge},
			{markers.Foreground, StateForeground},
			{markers.DumpBoundary, StateNone},
		},
		state:       StateNone,
		window:      Window{Start: UnknownStartClock, End: UnknownStartClock},
		sinceCharge: UnknownSinceCharge,
	}
}

// Next computes the transition for line without changing the classifier.
func (c *Classifier) Next(line string) Transition {
	t := Transition{From: c.state, To: c.state}

	if strings.Contains(line, c.markers.Window) {
		if w, ok := parseWindow(payloadAfter(line, c.markers.Window)); ok {
			t.Window = &w
		}
	}

	for _, s := range c.sections {
		if !strings.Contains(line, s.marker) {
			continue
		}
		t.To = s.state
		t.Marker = true
		if s.state == StateCollectorSinceCharge {
			label := payloadAfter(line, s.marker)
			t.SinceCharge = &label
		}
		break
	}

	return t
}

// Step classifies line, applies its side-effects and returns the transition.
func (c *Classifier) Step(line string) Transition {
	t := c.Next(line)
	c.state = t.To
	if t.Window != nil {
		c.window = *t.Window
	}
	if t.SinceCharge != nil {
		c.sinceCharge = *t.SinceCharge
	}
	return t
}

// State returns the current section.
func (c *Classifier) State() State {
	return c.state
}

// Window returns the active reporting window.
func (c *Classifier) Window() Window {
	return c.window
}

// SinceCharge returns the label of the last charge-cycle start.
func (c *Classifier) SinceCharge() string {
	return c.sinceCharge
}

// parseWindow splits a "X to Y" payload. Without " to " the window is a
// single point in time.
func parseWindow(payload string) (Window, bool) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Window{}, false
	}

	start, end, found := strings.Cut(payload, " to ")
	start = strings.TrimSpace(start)
	if !found {
		return Window{Start: start, End: start}, true
	}
	return Window{Start: start, End: strings.TrimSpace(end)}, true
}
