package core

import (
	"fmt"
	"strings"
)

// Error codes returned to API clients. These are stable identifiers, not
// display strings.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeAuthorization = "AUTHORIZATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeReferential   = "REFERENTIAL_ERROR"
	CodeMedia         = "MEDIA_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeInconsistency = "VERIFIED_INCONSISTENCY"
	CodeNotFound      = "NOT_FOUND"
)

// FieldViolation is one field-level validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the complete list of field violations for a
// payload. It is never partially applied: a payload with any violation is
// rejected before any write.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthorizationError indicates the caller's tenant does not own the resource
// or no tenant identity was available. It always aborts before any write.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "not authorized"
	}
	return "not authorized: " + e.Reason
}

// ConflictError indicates a tenant-scoped uniqueness violation, carrying the
// offending value.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// ReferentialError indicates invalid or foreign location references. Every
// offending id is reported so the caller gets a complete picture in one pass.
type ReferentialError struct {
	MissingIDs []string
	InvalidIDs []string
	Reasons    map[string]string
}

func (e *ReferentialError) Error() string {
	var parts []string
	if len(e.MissingIDs) > 0 {
		parts = append(parts, "unknown location ids: "+strings.Join(e.MissingIDs, ", "))
	}
	for _, id := range e.InvalidIDs {
		if reason, ok := e.Reasons[id]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", id, reason))
		} else {
			parts = append(parts, id+": invalid reference")
		}
	}
	if len(parts) == 0 {
		return "invalid location references"
	}
	return strings.Join(parts, "; ")
}

// OffendingIDs returns every id the error names, missing and invalid alike.
func (e *ReferentialError) OffendingIDs() []string {
	ids := make([]string, 0, len(e.MissingIDs)+len(e.InvalidIDs))
	ids = append(ids, e.MissingIDs...)
	ids = append(ids, e.InvalidIDs...)
	return ids
}

// MediaError indicates the media reconciliation left zero usable images.
// Individual upload failures are tolerated and logged; only total loss is
// fatal.
type MediaError struct {
	Failures map[string]string
}

func (e *MediaError) Error() string {
	if len(e.Failures) == 0 {
		return "no usable images after processing"
	}
	parts := make([]string, 0, len(e.Failures))
	for item, reason := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", item, reason))
	}
	return "no usable images after processing: " + strings.Join(parts, "; ")
}

// InconsistencyError is raised when a write reported success but the
// read-back does not match the intended state. It is the most severe class:
// the multi-store invariant was broken and the caller must retry rather than
// trust the write.
type InconsistencyError struct {
	Resource string
	Detail   string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("verified inconsistency on %s: %s", e.Resource, e.Detail)
}

// NotFoundError indicates a resource lookup found nothing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
