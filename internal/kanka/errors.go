package kanka

import (
	"errors"
	"fmt"
)

// ErrorKind classifies remote failures so callers can branch without
// string matching.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindValidation  ErrorKind = "validation"
	KindRemote      ErrorKind = "remote"
	KindTransient   ErrorKind = "transient"
)

// Error is a normalized remote API failure. Message is safe to show to
// callers: it carries the API's own words, never credentials.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("kanka: %s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("kanka: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is transient and worth
// retrying with backoff.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransient
}

// IsNotFound reports whether err is a remote not-found failure.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 429:
		return KindRateLimited
	case status == 422:
		return KindValidation
	case status >= 500:
		return KindTransient
	default:
		return KindRemote
	}
}
