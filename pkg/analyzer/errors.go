package analyzer

import (
	"fmt"
)

// NumericFieldError reports a matched field that does not parse as a number.
// It indicates an extraction pattern that admits text the aggregator cannot
// read, so it aborts the run.
type NumericFieldError struct {
	Table Table
	ID    string
	Field string
	Value string
	Err   error
}

func (e *NumericFieldError) Error() string {
	return fmt.Sprintf("%s: uid %s: invalid %s %q: %v", e.Table, e.ID, e.Field, e.Value, e.Err)
}

func (e *NumericFieldError) Unwrap() error {
	return e.Err
}
