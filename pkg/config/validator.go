package config

import "fmt"

// Validator validates settings comprehensively with clear, field-qualified
// error messages (mirrors pkg/config/validator.go's fail-fast style).
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first invalid field).
func (v *Validator) ValidateAll() error {
	s := v.cfg.Settings

	if s.SessionLength < 3 || s.SessionLength > 10 {
		return NewValidationError("session_length",
			fmt.Errorf("%w: must be between 3 and 10, got %d", ErrInvalidValue, s.SessionLength))
	}

	if s.NumberOfNewProblems < 0 || s.NumberOfNewProblems > s.SessionLength {
		return NewValidationError("number_of_new_problems",
			fmt.Errorf("%w: must be between 0 and session_length (%d), got %d",
				ErrInvalidValue, s.SessionLength, s.NumberOfNewProblems))
	}

	if s.ReviewRatio < 0 || s.ReviewRatio > 80 || s.ReviewRatio%10 != 0 {
		return NewValidationError("review_ratio",
			fmt.Errorf("%w: must be between 0 and 80 in steps of 10, got %d", ErrInvalidValue, s.ReviewRatio))
	}

	if s.MinReviewRatio < 0 || s.MinReviewRatio > 60 {
		return NewValidationError("min_review_ratio",
			fmt.Errorf("%w: must be between 0 and 60, got %d", ErrInvalidValue, s.MinReviewRatio))
	}

	if !s.DifficultyCap.IsValid() {
		return NewValidationError("difficulty_cap",
			fmt.Errorf("%w: must be Easy, Medium, or Hard, got %q", ErrInvalidValue, s.DifficultyCap))
	}

	return nil
}
