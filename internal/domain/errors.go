package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrAlreadyRecorded  = errors.New("already recorded")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNotFound         = errors.New("not found")
)

// ValidationError reports missing, oversized or malformed input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError formats a ValidationError
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AlreadyRecordedError is returned when a dedup guard already exists for the click
type AlreadyRecordedError struct {
	ButtonID string
}

func (e *AlreadyRecordedError) Error() string {
	return fmt.Sprintf("already recorded: %s", e.ButtonID)
}

func (e *AlreadyRecordedError) Is(target error) bool {
	return target == ErrAlreadyRecorded
}
