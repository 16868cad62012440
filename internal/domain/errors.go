package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// SeatConflictError reports seats already taken by another booking.
// Seats carries the offending identifiers so clients can refresh their map.
type SeatConflictError struct {
	TripID int64
	Seats  []string
}

func (e SeatConflictError) Error() string {
	if len(e.Seats) == 0 {
		return "requested seats are no longer available"
	}
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

// InsufficientCapacityError is returned when a trip cannot hold the
// requested number of seats.
type InsufficientCapacityError struct {
	Requested int
	Available int
}

func (e InsufficientCapacityError) Error() string {
	return fmt.Sprintf("only %d seat(s) available, %d requested", e.Available, e.Requested)
}

// InsufficientPointsError is returned when a caller asks to redeem more
// loyalty points than their balance holds. Over-requests are rejected,
// never silently clamped.
type InsufficientPointsError struct {
	Requested int64
	Balance   int64
}

func (e InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient loyalty points: requested %d, balance %d", e.Requested, e.Balance)
}

// NotBookableError marks trips that exist but cannot accept bookings
// (deactivated or already departed).
type NotBookableError struct {
	TripID int64
	Reason string
}

func (e NotBookableError) Error() string {
	if e.Reason == "" {
		return "trip is not bookable"
	}
	return e.Reason
}

// AlreadyProcessedError marks duplicate payment events. Callers treat it
// as a no-op where idempotency is required (webhook redelivery).
type AlreadyProcessedError struct {
	Reference string
	State     string
}

func (e AlreadyProcessedError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("reference %s already processed", e.Reference)
	}
	return fmt.Sprintf("reference %s already processed (state %s)", e.Reference, e.State)
}

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return e.Msg
}

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsSeatConflict(err error) bool {
	var target SeatConflictError
	return errors.As(err, &target)
}

func IsInsufficientCapacity(err error) bool {
	var target InsufficientCapacityError
	return errors.As(err, &target)
}

func IsInsufficientPoints(err error) bool {
	var target InsufficientPointsError
	return errors.As(err, &target)
}

func IsNotBookable(err error) bool {
	var target NotBookableError
	return errors.As(err, &target)
}

func IsAlreadyProcessed(err error) bool {
	var target AlreadyProcessedError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
