package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for ownership/auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPurchaseRequired is returned when forking a paid marketplace
	// plan without a recorded purchase.
	ErrPurchaseRequired = errors.New("purchase required")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
