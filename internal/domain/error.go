package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodeMalformedFeed    ErrorCode = "MALFORMED_FEED"
	CodeStoreDegraded    ErrorCode = "STORE_DEGRADED"
	CodeInternal         ErrorCode = "INTERNAL"
	CodeCanceled         ErrorCode = "CANCELED"
	CodeDeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
)

// Sentinel errors shared across packages.
var (
	ErrEmptyChangelog = errors.New("changelog is empty for an updated catalog")
	ErrInvalidVersion = errors.New("invalid version string")
)

type Error struct {
	Code      ErrorCode
	Op        string
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:      existing.Code,
			Op:        op,
			Message:   existing.Message,
			Cause:     existing.Cause,
			Retryable: existing.Retryable,
		}
	}
	return E(code, op, "", err)
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrInvalidVersion):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrEmptyChangelog):
		return CodeMalformedFeed, true
	default:
		return "", false
	}
}

// IsTransient reports whether a failure should be surfaced as a recoverable
// "unable to check for updates" condition rather than a defect.
func IsTransient(err error) bool {
	code, ok := CodeFrom(err)
	if !ok {
		return false
	}
	switch code {
	case CodeUnavailable, CodeStoreDegraded, CodeCanceled, CodeDeadlineExceeded:
		return true
	default:
		return false
	}
}
