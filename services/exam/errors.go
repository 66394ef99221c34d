package exam

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrDeleted          = errors.New("This exam was deleted.")
	ErrNotStarted       = errors.New("This exam has not started yet.")
	ErrClosed           = errors.New("This exam has been closed by the instructor.")
	ErrNotReady         = errors.New("This exam is not yet ready. Please try later.")
	ErrAlreadySubmitted = errors.New("Exam already submitted.")
	ErrEmptyPool        = errors.New("No questions available for this exam.")
)

// ValidationError carries a user-facing message about malformed input,
// primarily from the spreadsheet parser. It is shown to the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a spreadsheet/input validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
