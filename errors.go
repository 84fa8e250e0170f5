package unit

import (
	"errors"
	"fmt"
)

// UsageError reports invalid command line input or configuration. The
// process exits with exitcodes.UsageErr before any test runs.
type UsageError struct {
	Msg string
}

func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

func (e *UsageError) Error() string {
	return e.Msg
}

// IsUsageError reports whether err carries a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// TestFailureError reports that at least one executed test failed. The
// process exits with exitcodes.TestFailure.
type TestFailureError struct {
	Failed   int
	Executed int
}

func NewTestFailureError(failed, executed int) *TestFailureError {
	return &TestFailureError{Failed: failed, Executed: executed}
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("%d of %d unit tests failed", e.Failed, e.Executed)
}

// IsTestFailureError reports whether err carries a TestFailureError.
func IsTestFailureError(err error) bool {
	var te *TestFailureError
	return errors.As(err, &te)
}

// workerAbortedError reports that the single test a worker process ran
// ended with a fatal failure. It maps to exitcodes.WorkerAborted so the
// parent can tell an abort apart from an ordinary failure.
type workerAbortedError struct{}

func (e *workerAbortedError) Error() string {
	return "unit test aborted"
}

func isWorkerAborted(err error) bool {
	var we *workerAbortedError
	return errors.As(err, &we)
}
