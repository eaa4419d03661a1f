package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeEmptyBrief          = "DES001"
	ErrCodeDesignNotFound      = "DES002"
	ErrCodeProviderFailed      = "DES003"
	ErrCodeProviderUnavailable = "DES004"
	ErrCodeMalformedOutput     = "DES005"
	ErrCodeStoreFailed         = "DES006"
)

// Errors
var (
	ErrEmptyBrief          = errors.New("brief is empty after sanitization")
	ErrDesignNotFound      = errors.New("design not found")
	ErrProviderFailed      = errors.New("text provider error")
	ErrProviderUnavailable = errors.New("no provider credential configured")
	ErrMalformedOutput     = errors.New("provider returned malformed design")
	ErrStoreFailed         = errors.New("design store failure")
)

// DesignError custom error type
type DesignError struct {
	Code    string
	Message string
	Err     error
}

func (e *DesignError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DesignError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewEmptyBriefError() *DesignError {
	return &DesignError{
		Code:    ErrCodeEmptyBrief,
		Message: "Brief is required and must be non-empty",
		Err:     ErrEmptyBrief,
	}
}

func NewDesignNotFoundError() *DesignError {
	return &DesignError{
		Code:    ErrCodeDesignNotFound,
		Message: "Design not found",
		Err:     ErrDesignNotFound,
	}
}

func NewProviderFailedError(err error) *DesignError {
	return &DesignError{
		Code:    ErrCodeProviderFailed,
		Message: "Text provider exhausted its retry budget",
		Err:     errors.Join(ErrProviderFailed, err),
	}
}

func NewMalformedOutputError(detail string) *DesignError {
	return &DesignError{
		Code:    ErrCodeMalformedOutput,
		Message: fmt.Sprintf("Provider returned malformed design: %s", detail),
		Err:     ErrMalformedOutput,
	}
}
