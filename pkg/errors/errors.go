package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input data")

	ErrCalculatorNotConfigured = errors.New("trip calculator is not configured")

	ErrDriverInactive = errors.New("driver is inactive")
	ErrNoDriver       = errors.New("device has no assigned driver")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
