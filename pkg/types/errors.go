package types

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-matchable error classification. Callers
// across process and wire boundaries (CLI exit codes, HTTP sync
// responses) switch on Code rather than on error strings.
type Code string

const (
	CodeInvalidParameter       Code = "invalid_parameter"
	CodeInvalidDocID           Code = "invalid_doc_id"
	CodeInvalidJSON            Code = "invalid_json"
	CodeRevisionConflict       Code = "revision_conflict"
	CodeConflicted             Code = "conflicted"
	CodeDocumentAlreadyDeleted Code = "document_already_deleted"
	CodeDocumentDoesNotExist   Code = "document_does_not_exist"
	CodeInvalidGeneration      Code = "invalid_generation"
	CodeInvalidTransactionID   Code = "invalid_transaction_id"
	CodeBrokenSyncStream       Code = "broken_sync_stream"
	CodeInvalidHTTPResponse    Code = "invalid_http_response"
	CodeNotImplemented         Code = "not_implemented"
	CodeNoMem                  Code = "nomem"
	CodeInternal               Code = "internal_error"
)

// Error is a Burrow error carrying a stable Code alongside a
// human-readable message and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, &Error{Code: ...}) matching by Code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError builds an *Error with no wrapped cause.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an *Error that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the Code from err if it is (or wraps) an *Error,
// defaulting to CodeInternal otherwise.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
