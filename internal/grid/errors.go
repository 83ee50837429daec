package grid

import (
	"errors"
	"fmt"
)

// RejectKind classifies why an edit was rejected or rolled back.
type RejectKind string

const (
	RejectUnknownEntity       RejectKind = "unknown_entity"
	RejectDuplicateEntity     RejectKind = "duplicate_entity"
	RejectInvalidValue        RejectKind = "invalid_value"
	RejectIncompleteRowColumn RejectKind = "incomplete_row_column"
	RejectRemoteFailure       RejectKind = "remote_failure"
	RejectEditInFlight        RejectKind = "edit_in_flight"
	RejectBatch               RejectKind = "batch_edit"
)

// RejectError is any failed edit. Message is safe to show to the user;
// Cause, when set, carries the underlying remote error.
type RejectError struct {
	Kind    RejectKind
	Message string
	Cause   error
}

func (e *RejectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RejectError) Unwrap() error { return e.Cause }

// RejectKindOf extracts the RejectKind from err, or "".
func RejectKindOf(err error) RejectKind {
	var reject *RejectError
	if errors.As(err, &reject) {
		return reject.Kind
	}
	return ""
}

func reject(kind RejectKind, format string, args ...any) *RejectError {
	return &RejectError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func rejectRemote(cause error, userMsg string) *RejectError {
	return &RejectError{Kind: RejectRemoteFailure, Message: userMsg, Cause: cause}
}
