package plans

import "errors"

// Service errors
var (
	ErrPlanNotFound  = errors.New("data plan not found")
	ErrPlanDisabled  = errors.New("data plan is disabled")
	ErrInvalidMarkup = errors.New("markup must not be negative")
)
