package models

import "errors"

var (
	// ErrReference is returned when an operation names an event or user that does not exist.
	ErrReference = errors.New("referenced entity does not exist")
	// ErrNotFound is returned when the entity an operation targets does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned for a status change out of a terminal state or to an invalid target.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when the acting user's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a user already holds an active registration for the event.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned when an operation's arguments are malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable is returned on transient entity store failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
