package provider

import "fmt"

// Error attaches a stable, provider-defined code to a failure so the
// engine can pass it through the result record instead of collapsing it
// to "unknown".
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
