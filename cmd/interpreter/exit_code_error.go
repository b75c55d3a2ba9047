package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/ashivadi/open-interpreter/internal/preflight"

	"github.com/fatih/color"
)

const (
	exitUsage       = 2
	exitInterrupted = 130
)

// ExitCodeError wraps an error with a specific process exit code.
//
// Most commands return plain errors and exit with code 1; usage mistakes
// use a stable non-1 code so scripts can tell them apart.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var errorLine = color.New(color.FgRed).SprintFunc()

// exitCodeFor reports err on errOut and picks the process status.
func exitCodeFor(err error, errOut io.Writer) int {
	if err == nil {
		return 0
	}

	var fatal *preflight.FatalError
	if errors.As(err, &fatal) {
		_, _ = fmt.Fprintln(errOut, errorLine(fatal.Message))
		return fatal.ExitCode()
	}
	if errors.Is(err, preflight.ErrInterrupted) {
		_, _ = fmt.Fprintln(errOut)
		return exitInterrupted
	}

	_, _ = fmt.Fprintln(errOut, errorLine(fmt.Sprintf("Error: %v", err)))
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return 1
}
