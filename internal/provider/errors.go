package provider

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a pipeline failure so the API layer can pick a
// status code and the front end can offer a targeted remedy.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindConfiguration ErrorKind = "configuration_error"
	KindAuth          ErrorKind = "auth_error"
	KindRateLimit     ErrorKind = "rate_limit_error"
	KindUpstream      ErrorKind = "upstream_error"
	KindNetwork       ErrorKind = "network_error"
)

// Error is the one error type that crosses the adapter boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// authHints and quotaHints are matched case-insensitively against upstream
// error messages; providers do not return machine-readable codes for these.
var (
	authHints  = []string{"api key", "api_key", "invalid key", "unauthorized", "unauthenticated", "permission denied", "401"}
	quotaHints = []string{"quota", "rate limit", "ratelimit", "resource exhausted", "too many requests", "429", "limit exceeded", "insufficient_quota"}
	modelHints = []string{"model not found", "unknown model", "unsupported model", "is not found for api version"}
)

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// ClassifyUpstream maps an upstream provider error onto the taxonomy by
// sniffing its message. Anything unrecognized stays an upstream error.
func ClassifyUpstream(err error, context string) *Error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, authHints):
		return WrapError(KindAuth, context+": invalid credentials", err)
	case containsAny(msg, quotaHints):
		return WrapError(KindRateLimit, context+": quota exceeded", err)
	case containsAny(msg, modelHints):
		return WrapError(KindValidation, context+": unsupported model", err)
	default:
		return WrapError(KindUpstream, context+" failed", err)
	}
}
