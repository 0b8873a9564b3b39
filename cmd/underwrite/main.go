package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Every evaluation succeeded
	ExitAdapterErrors = 1 // Completed, but some evaluations failed
	ExitError         = 2 // Configuration or runtime error
)

// AdapterErrorsError indicates that a run completed but one or more
// evaluations failed and were recorded as ADJUDICATE.
type AdapterErrorsError struct {
	Failed int
	Total  int
}

func (e *AdapterErrorsError) Error() string {
	return fmt.Sprintf("completed with %d failed evaluation(s) out of %d", e.Failed, e.Total)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var adapterErr *AdapterErrorsError
	if errors.As(err, &adapterErr) {
		return ExitAdapterErrors
	}
	return ExitError
}
