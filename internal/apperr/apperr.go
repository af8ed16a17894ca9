// Package apperr is the error taxonomy shared by the booking core and its
// HTTP surface.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNotFound              Kind = "NOT_FOUND"
	KindSeatConflict          Kind = "SEAT_CONFLICT"
	KindInvalidSignature      Kind = "INVALID_SIGNATURE"
	KindMalformedNotification Kind = "MALFORMED_NOTIFICATION"
	KindDuplicateOrder        Kind = "DUPLICATE_ORDER"
	KindValidation            Kind = "VALIDATION"
	KindInternal              Kind = "INTERNAL"
)

// Error carries a Kind plus the data a caller needs to act on it.
// Conflicting is only set for KindSeatConflict.
type Error struct {
	Kind        Kind
	Message     string
	Conflicting []string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(resource, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

func SeatConflict(seats []string) error {
	return &Error{
		Kind:        KindSeatConflict,
		Message:     fmt.Sprintf("Seats %s are already booked!", strings.Join(seats, ", ")),
		Conflicting: append([]string(nil), seats...),
	}
}

func InvalidSignature(msg string) error {
	return &Error{Kind: KindInvalidSignature, Message: msg}
}

func Malformed(msg string) error {
	return &Error{Kind: KindMalformedNotification, Message: msg}
}

func DuplicateOrder(orderID string) error {
	return &Error{Kind: KindDuplicateOrder, Message: fmt.Sprintf("order %s already exists", orderID)}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the Kind of err, KindInternal for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// ConflictingSeats returns the seat list carried by a SeatConflict error.
func ConflictingSeats(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindSeatConflict {
		return e.Conflicting
	}
	return nil
}
