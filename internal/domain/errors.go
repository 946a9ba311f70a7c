package domain

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a category of failure that callers can branch on.
type ErrorKind string

const (
	KindUnauthorized        ErrorKind = "unauthorized"
	KindNotFound            ErrorKind = "not_found"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindQuotaExceeded       ErrorKind = "quota_exceeded"
	KindPaymentRequired     ErrorKind = "payment_required"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindStoreUnavailable    ErrorKind = "store_unavailable"
	KindRenewalNotEligible  ErrorKind = "renewal_not_eligible"
)

// Error is a domain error with a machine-distinguishable kind. Details
// optionally carries a structured payload for the client, such as the usage
// counts behind a quota rejection or the next eligible timestamp behind a
// renewal rejection.
type Error struct {
	Kind    ErrorKind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new domain error.
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ED creates a new domain error carrying a structured details payload.
func ED(kind ErrorKind, message string, details any) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// WrapE wraps an underlying error with a domain kind.
func WrapE(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or empty string for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// DetailsOf returns the structured details of err, or nil.
func DetailsOf(err error) any {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
