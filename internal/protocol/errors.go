package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes fatal protocol errors. Expected control-flow outcomes
// (not a trading day, outside window, no document) are Report statuses, not
// errors; only conditions that must halt the invocation live here.
type ErrorCode string

const (
	// CodeMissingSecret indicates the commit secret is absent from the
	// environment. Fatal configuration error.
	CodeMissingSecret ErrorCode = "CONFIG_MISSING_SECRET"

	// CodeCommitMismatch indicates revealed inputs cannot reproduce the
	// stored commitment. Either corruption or a violated security property;
	// never downgraded.
	CodeCommitMismatch ErrorCode = "COMMIT_MISMATCH"

	// CodeUnreconcilable indicates the bounded reconciliation search
	// exhausted all candidates without matching the stored commitment.
	CodeUnreconcilable ErrorCode = "UNRECONCILABLE_COMMITMENT"
)

// Error is a fatal protocol error with structured context.
// It propagates to the CLI boundary unmodified; the core never retries.
type Error struct {
	Code    ErrorCode
	Message string
	Date    string
	Symbol  string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Symbol != "" && e.Date != "":
		return fmt.Sprintf("%s: %s (date=%s, symbol=%s)", e.Code, e.Message, e.Date, e.Symbol)
	case e.Date != "":
		return fmt.Sprintf("%s: %s (date=%s)", e.Code, e.Message, e.Date)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsMissingSecret reports whether err is a missing-secret configuration error.
func IsMissingSecret(err error) bool {
	return hasCode(err, CodeMissingSecret)
}

// IsCommitMismatch reports whether err is a commitment verification failure.
func IsCommitMismatch(err error) bool {
	return hasCode(err, CodeCommitMismatch)
}

// IsUnreconcilable reports whether err is an exhausted reconciliation search.
func IsUnreconcilable(err error) bool {
	return hasCode(err, CodeUnreconcilable)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
