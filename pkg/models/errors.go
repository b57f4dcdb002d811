package models

import (
	"fmt"
	"strings"
)

// FieldError is a single violated constraint on a named field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every violated constraint on a request, not just
// the first one found.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError indicates no SDR exists with the given identity.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sdr %d not found", e.ID)
}

// TransportError is a non-2xx response from the external tracker after the
// retry policy was exhausted. Body is the raw response body.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tracker request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// CredentialError indicates the shared secret could not be retrieved from
// the secret provider. Operations requiring authentication cannot proceed.
type CredentialError struct {
	Name string
	Err  error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("failed to retrieve credential %q: %v", e.Name, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }
