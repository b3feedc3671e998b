package leads

import "errors"

var (
	// ErrMissingFields is returned when name, email or phone is empty
	ErrMissingFields = errors.New("name, email and phone are required")

	// ErrInvalidField is returned when a field is an object or array instead of text
	ErrInvalidField = errors.New("name, email and phone must be text")

	// ErrLeadNotFound is returned by GetByID when no lead has the given ID
	ErrLeadNotFound = errors.New("lead not found")
)
