package reconcile

import (
	"errors"
	"fmt"

	"github.com/roach88/mirror/internal/doc"
)

// ProtocolError represents a violation of the change-message protocol.
//
// Protocol errors are fatal: they mean the replica has desynchronized from
// the authoritative source and any further mutation is untrustworthy. The
// engine never retries or suppresses them; recovery (typically a full
// reset-and-replay batch) belongs to the orchestrating caller.
//
// ProtocolError includes structured fields so a desync can be diagnosed
// without inspecting store internals.
type ProtocolError struct {
	// Code identifies the violated precondition.
	Code ProtocolErrorCode

	// Tag is the message variant being applied.
	Tag Tag

	// ID identifies the affected document, when known.
	ID doc.ID

	// Detail is a human-readable description of the violation.
	Detail string
}

// ProtocolErrorCode categorizes protocol errors.
type ProtocolErrorCode string

const (
	// ErrCodeAddOnExisting indicates an add for an identifier already present.
	ErrCodeAddOnExisting ProtocolErrorCode = "ADD_ON_EXISTING"

	// ErrCodeRemoveOnMissing indicates a remove for an absent identifier.
	ErrCodeRemoveOnMissing ProtocolErrorCode = "REMOVE_ON_MISSING"

	// ErrCodeChangeOnMissing indicates a change for an absent identifier.
	ErrCodeChangeOnMissing ProtocolErrorCode = "CHANGE_ON_MISSING"

	// ErrCodeUnknownMessage indicates an unrecognized message tag.
	ErrCodeUnknownMessage ProtocolErrorCode = "UNKNOWN_MESSAGE"

	// ErrCodeMalformedMessage indicates a message missing required parts
	// for its tag.
	ErrCodeMalformedMessage ProtocolErrorCode = "MALFORMED_MESSAGE"
)

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (msg=%s, id=%s)", e.Code, e.Detail, e.Tag, e.ID)
	}
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s (msg=%s)", e.Code, e.Detail, e.Tag)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// IsProtocolViolation reports whether err is a presence/absence invariant
// violation (add-on-existing, remove-on-missing, change-on-missing, unknown
// tag). Uses errors.As to handle wrapped errors.
func IsProtocolViolation(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code != ErrCodeMalformedMessage
	}
	return false
}

// IsMalformed reports whether err describes a structurally invalid message.
func IsMalformed(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeMalformedMessage
	}
	return false
}
