package window

import (
	"errors"
	"fmt"

	"github.com/ayush844/ctxwin/utils"
)

// ErrorType classifies errors returned by the window package.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidCapacity
	ErrorTypeEntryExceedsCapacity
	ErrorTypeInvalidCost
)

// WindowError is the error type returned by window operations. Both
// failure conditions are reported synchronously and are never retried
// by the window itself; recovery is the caller's responsibility.
type WindowError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *WindowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *WindowError) Unwrap() error {
	return e.Err
}

func (e *WindowError) TypeString() string {
	switch e.Type {
	case ErrorTypeInvalidCapacity:
		return "InvalidCapacityError"
	case ErrorTypeEntryExceedsCapacity:
		return "EntryExceedsCapacityError"
	case ErrorTypeInvalidCost:
		return "InvalidCostError"
	default:
		return "UnknownError"
	}
}

// NewWindowError creates a new WindowError.
func NewWindowError(errType ErrorType, message string, err error) *WindowError {
	return &WindowError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsInvalidCapacity reports whether err is an InvalidCapacity error.
func IsInvalidCapacity(err error) bool {
	return hasErrorType(err, ErrorTypeInvalidCapacity)
}

// IsEntryExceedsCapacity reports whether err is an
// EntryExceedsCapacity error.
func IsEntryExceedsCapacity(err error) bool {
	return hasErrorType(err, ErrorTypeEntryExceedsCapacity)
}

func hasErrorType(err error, errType ErrorType) bool {
	var winErr *WindowError
	return errors.As(err, &winErr) && winErr.Type == errType
}

// HandleError logs the error; if fatal is true it panics afterwards so
// the caller's recovery machinery can take over.
func HandleError(err error, fatal bool, logger utils.Logger) {
	if err == nil {
		return
	}

	var winErr *WindowError
	if errors.As(err, &winErr) {
		logger.Error(winErr.Message, "error_type", winErr.TypeString(), "error", winErr.Err)
	} else {
		logger.Error("An error occurred", "error", err)
	}

	if fatal {
		panic(err)
	}
}
