// Package services defines the business logic for partners, orders,
// locations, and earnings. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Partner and auth errors.
var (
	// ErrPartnerNotFound indicates that the requested partner does not exist.
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrEmailTaken is returned when a registration reuses an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a failed login. It deliberately
	// does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOTPInvalid is returned when a one-time code does not match.
	ErrOTPInvalid = errors.New("invalid one-time code")

	// ErrOTPExpired is returned when a one-time code has lapsed.
	ErrOTPExpired = errors.New("one-time code expired")
)

// Location errors.
var (
	// ErrInvalidCoordinates is returned when a sample's latitude is outside
	// [-90,90] or longitude outside [-180,180].
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// Order state machine errors.
var (
	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyAssigned is returned when accepting an order that another
	// partner has already taken.
	ErrAlreadyAssigned = errors.New("order already assigned")

	// ErrInvalidOrderState is returned when accepting an order that is no
	// longer in the prepared state.
	ErrInvalidOrderState = errors.New("order not available for acceptance")

	// ErrInvalidTransition is returned when the target status is not the
	// immediate successor of the current status (and is not a cancellation
	// of a non-terminal order).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotOrderOwner is returned when a partner attempts to transition an
	// order assigned to someone else.
	ErrNotOrderOwner = errors.New("order belongs to another partner")
)
