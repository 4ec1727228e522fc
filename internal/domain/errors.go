package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownService  = errors.New("unknown integration service")
	ErrUnknownLanguage = errors.New("unknown language code")
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrNotConnected    = errors.New("service is not connected")
	ErrNoChannels      = errors.New("no connected notification channels")
	ErrDeliveryFailed  = errors.New("delivery failed on all channels")
	ErrSettingNotFound = errors.New("setting not found")
	ErrStoreClosed     = errors.New("state store is closed")
)

// FetchError wraps a network or remote failure from an external source.
// Callers recover by retaining last-known-good data; a FetchError never
// propagates past the refresh boundary.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ValidationError marks malformed config rejected before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
