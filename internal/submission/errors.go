package submission

import (
	"errors"
	"fmt"
)

// DefaultFailureMessage is shown when the Submission Service gives no reason.
const DefaultFailureMessage = "Submission failed"

var (
	ErrServiceUnavailable = errors.New("submission service unavailable")
	ErrEmptyResult        = errors.New("submission service returned no result")
	ErrNoSubmissionID     = errors.New("submission service returned no submission id")
)

// ServiceError is a failure reported by the Submission Service. Message is
// the human-readable text supplied by the server, if any.
type ServiceError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("submission rejected (status %d): %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("submission rejected (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submission rejected (status %d)", e.StatusCode)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ErrorMessage picks the text to show the learner for a failed submission:
// the server-supplied message when present, the generic one otherwise.
func ErrorMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return DefaultFailureMessage
}
