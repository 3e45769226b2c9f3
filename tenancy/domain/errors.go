package domain

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant id does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidPlan is returned when an admin submits a plan outside the
	// closed enumeration.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrInvalidFeatureKey is returned when an admin submits a feature key
	// outside the closed set.
	ErrInvalidFeatureKey = errors.New("invalid feature key")
)
