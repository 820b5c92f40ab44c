package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("access forbidden: you don't own this resource")
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmailTaken          = errors.New("email or username already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrTokenBudgetExceeded = errors.New("daily AI token budget exceeded")
	ErrLockNotAcquired     = errors.New("resource is busy, try again")
)

// Profile fields required for the TDEE calculation, in reporting order.
const (
	FieldWeightKg      = "weight_kg"
	FieldHeightCm      = "height_cm"
	FieldDateOfBirth   = "date_of_birth"
	FieldGender        = "gender"
	FieldActivityLevel = "activity_level"
)

// ProfileIncompleteError is returned when a calculation needs profile fields the user has not filled in.
type ProfileIncompleteError struct {
	Missing []string
}

func (e *ProfileIncompleteError) Error() string {
	return fmt.Sprintf("Profile incomplete. Please provide: %s", strings.Join(e.Missing, ", "))
}

// TokenBudgetError carries the counter state when an AI request is refused.
type TokenBudgetError struct {
	Used  int64
	Limit int64
}

func (e *TokenBudgetError) Error() string {
	return fmt.Sprintf("%s: used %d of %d", ErrTokenBudgetExceeded.Error(), e.Used, e.Limit)
}

func (e *TokenBudgetError) Unwrap() error {
	return ErrTokenBudgetExceeded
}
