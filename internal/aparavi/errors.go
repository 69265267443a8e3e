package aparavi

import "errors"

// Error taxonomy for the Aparavi API, mirrored from the HTTP status codes
// and envelope errors the service returns. Callers test with errors.Is.
var (
	// ErrAuthentication covers 401 responses: bad or missing API key.
	ErrAuthentication = errors.New("authentication failed")

	// ErrValidation covers 422 responses from payload validation.
	ErrValidation = errors.New("validation failed")

	// ErrTaskNotFound is returned when the service reports an unknown task
	// token, either as a 500 with a "not found" message or an Error-status
	// envelope.
	ErrTaskNotFound = errors.New("task not found")

	// ErrPipeline is returned when pipeline validation fails.
	ErrPipeline = errors.New("pipeline validation failed")

	// ErrTaskTimeout is returned when a task fails to become ready within
	// the polling budget.
	ErrTaskTimeout = errors.New("task failed to become ready")
)
