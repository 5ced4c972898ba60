package limelight

import "fmt"

// Status classifies the outcome of a session operation.
type Status uint8

const (
	// StatusSuccess means the operation completed and any output is valid.
	StatusSuccess Status = iota
	// StatusErrorUnknown means the backend or a collaborator failed.
	// Result.Message carries the diagnostic text.
	StatusErrorUnknown
	// StatusErrorTimeout means the render lock was not acquired within the
	// operation's timeout. The scene state is unchanged and the call may be
	// retried.
	StatusErrorTimeout
	// StatusNotImplemented means the capability is absent from the active
	// backend or bridge configuration. Permanent for that configuration.
	StatusNotImplemented
	// StatusNotFound means a referenced node or animation is unknown.
	StatusNotFound
	// StatusDisposed means the operation was called on a disposed scene.
	StatusDisposed
)

// String returns the status name in the canonical upper-case form.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusErrorUnknown:
		return "ERROR_UNKNOWN"
	case StatusErrorTimeout:
		return "ERROR_TIMEOUT"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusDisposed:
		return "DISPOSED"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Result is the uniform outcome value produced by every session operation,
// synchronous or the final step of an asynchronous one. Operations never
// panic or return errors across the API boundary; every failure mode is a
// Result value.
type Result struct {
	Status  Status
	Data    any    // operation payload (e.g. the inflated child handle)
	Message string // optional diagnostic, set on failures
}

// Ok reports whether the result status is StatusSuccess.
func (r Result) Ok() bool {
	return r.Status == StatusSuccess
}

// String formats the result for logs and test failures.
func (r Result) String() string {
	if r.Message == "" {
		return r.Status.String()
	}
	return r.Status.String() + ": " + r.Message
}

// success is the shared zero-payload success value.
var success = Result{Status: StatusSuccess}

// failf builds a failure result with a formatted diagnostic.
func failf(status Status, format string, args ...any) Result {
	return Result{Status: status, Message: fmt.Sprintf(format, args...)}
}
