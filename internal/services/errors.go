package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every failure returned by the services either unwraps to one
// of these or is an unexpected storage failure.
var (
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrNotFound          = errors.New("not found")
	ErrIntegrityConflict = errors.New("integrity conflict")
)

var (
	ErrWorkdayAlreadyStarted = invalidOperation("the workday has already started")
	ErrNoOpenWorkdayToEnd    = invalidOperation("no open workday to end")
	ErrNoOpenWorkday         = invalidOperation("no open workday")
	ErrNoActiveProjectToEnd  = invalidOperation("no active project to end")
	ErrNoActiveProjectBreak  = invalidOperation("no active project to pause for break")
	ErrBreakAlreadyActive    = invalidOperation("a break is already active")
	ErrNoActiveBreak         = invalidOperation("no active break to end")
	ErrNoRecentProject       = invalidOperation("no recent project to resume")
	ErrUserArchived          = invalidOperation("user is archived")
	ErrProjectNameRequired   = invalidOperation("project name is required")
)

// OperationError carries the message shown to the caller and unwraps to its kind.
type OperationError struct {
	kind    error
	message string
}

func (err *OperationError) Error() string {
	return err.message
}

func (err *OperationError) Unwrap() error {
	return err.kind
}

func invalidOperation(message string) *OperationError {
	return &OperationError{kind: ErrInvalidOperation, message: message}
}

func invalidOperationf(format string, args ...any) *OperationError {
	return invalidOperation(fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) *OperationError {
	return &OperationError{kind: ErrNotFound, message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *OperationError {
	return &OperationError{kind: ErrIntegrityConflict, message: fmt.Sprintf(format, args...)}
}

// translateLookup maps a missing row to a not-found error with message and
// wraps anything else as a storage failure.
func translateLookup(err error, action string, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &OperationError{kind: ErrNotFound, message: message}
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
