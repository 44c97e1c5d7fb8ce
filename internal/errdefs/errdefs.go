// Package errdefs holds the error classes shared by the edit engine and the job manager.
// Callers wrap them with fmt.Errorf("...: %w", ...) and test with errors.Is.
package errdefs

import "errors"

var (
	// ErrNotFound marks an unknown job id or an edit target that matches no symbol.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied marks a file that cannot be written.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrParseUnavailable means no parser-backed grammar exists for a file.
	// It only selects the heuristic extractor and never reaches callers.
	ErrParseUnavailable = errors.New("parser unavailable")

	// ErrValidationFailed marks post-edit syntax errors that auto-heal could not fix.
	ErrValidationFailed = errors.New("validation failed")

	// ErrSpawnFailed marks a process that could not be started.
	ErrSpawnFailed = errors.New("spawn failed")

	// ErrTimeout marks a deadline that expired (job budget or repair oracle).
	ErrTimeout = errors.New("timeout")

	// ErrIO marks read, write and log failures.
	ErrIO = errors.New("io error")

	// ErrInvalidInput marks malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)

// Hint returns a short recovery suggestion for the error class of err.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "List the available symbols or jobs first instead of guessing names"
	case errors.Is(err, ErrPermissionDenied):
		return "Check the file mode and ownership"
	case errors.Is(err, ErrValidationFailed):
		return "The file was not modified; fix the replacement code and retry"
	case errors.Is(err, ErrSpawnFailed):
		return "Check the command and working directory"
	case errors.Is(err, ErrTimeout):
		return "Retry with a longer timeout"
	case errors.Is(err, ErrInvalidInput):
		return "Check the tool arguments"
	default:
		return ""
	}
}
