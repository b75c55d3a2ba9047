package preflight

import "errors"

var (
	// ErrInterrupted reports that the operator aborted a blocking prompt.
	// Negotiation stops and the execution config may be partially updated.
	ErrInterrupted = errors.New("preflight: interrupted")

	// ErrTransitionLimit guards the state machine against collaborators that
	// keep flipping the execution mode.
	ErrTransitionLimit = errors.New("preflight: transition limit exceeded")
)

// FatalError ends the process: a required capability could not be provided
// and no fallback exists.
type FatalError struct {
	Code    int
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *FatalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitCode returns the process status to exit with; never zero.
func (e *FatalError) ExitCode() int {
	if e == nil || e.Code == 0 {
		return 1
	}
	return e.Code
}
