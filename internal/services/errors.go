// Package services defines the business logic for reading and mutating the
// cafe catalog. This file centralizes service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Cafe-related errors.
var (
	// ErrCafeNotFound indicates that no cafe exists with the requested id.
	ErrCafeNotFound = errors.New("cafe not found")

	// ErrNoCafes is returned by Random when the catalog is empty.
	ErrNoCafes = errors.New("no cafes in the catalog")

	// ErrDuplicateName is returned when adding a cafe whose name is taken.
	ErrDuplicateName = errors.New("cafe name already exists")

	// ErrMissingField is returned when a required cafe attribute is absent
	// or blank. It is wrapped with the field name.
	ErrMissingField = errors.New("missing required field")

	// ErrMissingPrice is returned when a price update carries no price.
	ErrMissingPrice = errors.New("new price is required")
)
