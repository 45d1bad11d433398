package domain

import (
	"errors"
	"fmt"
)

// ValidationError is shown to the user as-is; no side effect has happened yet.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

// StoreError reports a failed call to the booking store. Msg carries the
// store's own message (or the transport error text) verbatim.
type StoreError struct {
	Op  string
	Msg string
	Err error
}

func (e StoreError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("store %s failed", e.Op)
}

func (e StoreError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsStore(err error) bool {
	var target StoreError
	return errors.As(err, &target)
}

// NotFoundError means the store answered but holds no record for the id.
type NotFoundError struct {
	InvoiceID string
}

func (e NotFoundError) Error() string {
	return "Invoice tidak ditemukan"
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}
