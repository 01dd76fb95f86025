package bootstrap

import "fmt"

// Status classifies the outcome of a pipeline stage.
type Status int

const (
	// StatusSuccess means the stage completed and the pipeline continues.
	StatusSuccess Status = iota

	// StatusSkipped means the stage decided it had nothing to do, or the
	// operator declined an optional action. The pipeline continues.
	StatusSkipped

	// StatusWarning means the stage completed with best-effort failures
	// that do not block progress. The pipeline continues.
	StatusWarning

	// StatusFatal halts the pipeline; the process exits non-zero.
	StatusFatal

	// StatusCleanExit halts the pipeline as a voluntary early exit; the
	// process exits zero. Used when the operator declines to proceed.
	StatusCleanExit
)

// String returns the status name for logs and the journal.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusWarning:
		return "warning"
	case StatusFatal:
		return "fatal"
	case StatusCleanExit:
		return "clean-exit"
	default:
		return "unknown"
	}
}

// Result is the typed outcome of a stage.
type Result struct {
	Status  Status
	Message string
	Err     error
}

// Success returns a successful result with an optional message.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

// Skipf returns a skipped result.
func Skipf(format string, args ...any) Result {
	return Result{Status: StatusSkipped, Message: fmt.Sprintf(format, args...)}
}

// Warnf returns a warning result.
func Warnf(format string, args ...any) Result {
	return Result{Status: StatusWarning, Message: fmt.Sprintf(format, args...)}
}

// Fatal returns a fatal result wrapping the given error.
func Fatal(err error) Result {
	return Result{Status: StatusFatal, Err: err}
}

// Fatalf returns a fatal result from a formatted message.
func Fatalf(format string, args ...any) Result {
	return Result{Status: StatusFatal, Err: fmt.Errorf(format, args...)}
}

// CleanExit returns a voluntary-early-exit result.
func CleanExit(message string) Result {
	return Result{Status: StatusCleanExit, Message: message}
}
