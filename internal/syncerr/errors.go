// Package syncerr defines the error taxonomy shared by every stage of account
// synchronization. Each error carries a stable string code and integer code so
// a failed run can be reported without leaking implementation details, while
// still wrapping the original cause for errors.Is and errors.As.
package syncerr

import (
	"errors"
	"fmt"
)

// Code identifies a class of synchronization failure.
type Code string

const (
	CodeTransport           Code = "TRANSPORT_ERROR"
	CodeAPI                 Code = "API_ERROR"
	CodeNotFound            Code = "NOT_FOUND"
	CodeAnchorBlockNotFound Code = "ANCHOR_BLOCK_NOT_FOUND"
	CodeParse               Code = "PARSE_ERROR"
	CodeInterpretation      Code = "INTERPRETATION_ERROR"
	CodePersistence         Code = "PERSISTENCE_ERROR"
	CodeUnknown             Code = "UNKNOWN_ERROR"
)

// Int returns the stable integer form of the code, published alongside the
// string form in SYNCHRONIZATION_FAILED events.
func (c Code) Int() int {
	switch c {
	case CodeTransport:
		return 1
	case CodeAPI:
		return 2
	case CodeNotFound:
		return 3
	case CodeAnchorBlockNotFound:
		return 4
	case CodeParse:
		return 5
	case CodeInterpretation:
		return 6
	case CodePersistence:
		return 7
	default:
		return 0
	}
}

// Error is a classified synchronization failure.
type Error struct {
	Code       Code   // failure class
	Message    string // human readable description
	StatusCode int    // HTTP status for API errors, zero otherwise
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same code. It lets callers
// compare against the package sentinels:
//
//	if errors.Is(err, syncerr.ErrNotFound) { ... }
//
// A vanished anchor block is a not found error as well.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code || (t.Code == CodeNotFound && e.Code == CodeAnchorBlockNotFound)
}

// Sentinels usable with errors.Is. They match any *Error of the same code.
var (
	ErrTransport           = &Error{Code: CodeTransport}
	ErrAPI                 = &Error{Code: CodeAPI}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrAnchorBlockNotFound = &Error{Code: CodeAnchorBlockNotFound}
	ErrParse               = &Error{Code: CodeParse}
	ErrInterpretation      = &Error{Code: CodeInterpretation}
	ErrPersistence         = &Error{Code: CodePersistence}
)

// Transport wraps a connection level failure (DNS, TLS, timeout, reset).
func Transport(err error, format string, args ...any) *Error {
	return &Error{Code: CodeTransport, Message: fmt.Sprintf(format, args...), Err: err}
}

// API reports a non-successful response carrying the server message.
func API(status int, message string) *Error {
	return &Error{Code: CodeAPI, Message: message, StatusCode: status}
}

// NotFound reports a missing block, transaction or raw transaction.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AnchorBlockNotFound reports that the block a resumption cursor points at is
// no longer known to the explorer.
func AnchorBlockNotFound(hash string) *Error {
	return &Error{Code: CodeAnchorBlockNotFound, Message: "anchor block " + hash + " vanished"}
}

// Parse wraps a malformed payload or a missing required field.
func Parse(err error, format string, args ...any) *Error {
	return &Error{Code: CodeParse, Message: fmt.Sprintf(format, args...), Err: err}
}

// Interpretation reports a chain invariant violated by a decoded transaction.
func Interpretation(format string, args ...any) *Error {
	return &Error{Code: CodeInterpretation, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure.
func Persistence(err error, format string, args ...any) *Error {
	return &Error{Code: CodePersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

// Classify returns the code and message to publish for err. Unclassified
// errors are reported as CodeUnknown with their full text.
func Classify(err error) (Code, string) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, err.Error()
	}

	return CodeUnknown, err.Error()
}

// Retryable reports whether a run that failed with err is worth retrying
// without operator intervention: network and server side failures are,
// data and storage failures are not.
func Retryable(err error) bool {
	code, _ := Classify(err)
	switch code {
	case CodeTransport, CodeAPI, CodeAnchorBlockNotFound:
		return true
	default:
		return false
	}
}
