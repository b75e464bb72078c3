package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exam-engine/internal/errors"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotEditable = errors.New("session is not accepting answers")
	ErrSessionNotActive   = errors.New("session is not active")
	ErrSessionClosed      = errors.New("session has been closed")

	// Paper and question errors
	ErrPaperLoad        = errors.New("failed to load paper")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerShape      = errors.New("answer does not fit question")

	// Review errors
	ErrSnapshotNotFound = errors.New("submitted answers not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationErrors = apperrors.ValidationErrors

// LoadError is a Paper Provider failure; it is terminal for the session
type LoadError struct {
	PaperID uint
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load paper %d: %v", e.PaperID, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrPaperLoad, e.Err}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSnapshotNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrAnswerShape) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionNotEditable) ||
		errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrSessionClosed)
}

// IsLoadFailure checks if error comes from the Paper Provider
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrPaperLoad)
}
