// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Status is the lifecycle state of an SDR. It mirrors the state values of
// the backing work item one to one.
type Status string

const (
	StatusNew      Status = "New"
	StatusActive   Status = "Active"
	StatusResolved Status = "Resolved"
	StatusClosed   Status = "Closed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusActive, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority is the business priority of an SDR.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// CustomerType distinguishes internal from external requesters.
type CustomerType string

const (
	CustomerInternal CustomerType = "Internal"
	CustomerExternal CustomerType = "External"
)

// Valid reports whether c is a known customer type.
func (c CustomerType) Valid() bool {
	return c == CustomerInternal || c == CustomerExternal
}

// SourceType records the channel an SDR arrived through.
type SourceType string

const (
	SourceManual SourceType = "Manual"
	SourceEmail  SourceType = "Email"
	SourceFile   SourceType = "File"
	SourceTeams  SourceType = "Teams"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceManual, SourceEmail, SourceFile, SourceTeams:
		return true
	}
	return false
}

// SDR is a Service Delivery Request. It has no storage of its own: the
// record lives as a work item in the external tracker, and ID is that work
// item's identity. ID is zero until the SDR has been created externally and
// never changes afterwards.
type SDR struct {
	// ID is the backing work item's identifier.
	ID int `json:"id"`

	// Title is the short summary of the request.
	Title string `json:"title"`

	// Description is the full body text of the request.
	Description string `json:"description,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Priority is the business priority.
	Priority Priority `json:"priority"`

	// CustomerType distinguishes internal from external requesters.
	CustomerType CustomerType `json:"customerType"`

	// SourceType is the intake channel the request arrived through.
	SourceType SourceType `json:"sourceType"`

	// RequiredByDate is the date the requester needs delivery by.
	RequiredByDate *time.Time `json:"requiredByDate,omitempty"`

	// SubmitterID identifies the requesting user.
	SubmitterID string `json:"submitterId"`

	// SubmitterName is the requesting user's display name.
	SubmitterName string `json:"submitterName,omitempty"`

	// SubmitterEmail is the requesting user's email address.
	SubmitterEmail string `json:"submitterEmail"`

	// AssignedTo is the assignee's identity, empty when unassigned.
	AssignedTo string `json:"assignedTo,omitempty"`

	// EstimatedHours is the estimated effort, nil when not estimated.
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`

	// ActualHours is the recorded effort, nil when not recorded.
	ActualHours *float64 `json:"actualHours,omitempty"`

	// CreatedAt is assigned by the external tracker at creation.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is assigned by the external tracker on every change.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Submitter is the identity of the user an SDR is created on behalf of.
// All three fields are required at creation time.
type Submitter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateRequest carries the caller-supplied fields for a new SDR. Optional
// fields left at their zero value are filled with defaults before the
// request is sent to the tracker.
type CreateRequest struct {
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Priority       Priority     `json:"priority,omitempty"`
	CustomerType   CustomerType `json:"customerType,omitempty"`
	SourceType     SourceType   `json:"sourceType,omitempty"`
	RequiredByDate *time.Time   `json:"requiredByDate,omitempty"`
	EstimatedHours *float64     `json:"estimatedHours,omitempty"`
	Submitter      Submitter    `json:"submitter"`
}

// Filter selects SDRs by equality on a fixed set of fields. Empty fields
// are not part of the query; present fields are ANDed together.
type Filter struct {
	SubmitterID string
	AssignedTo  string
	State       Status
	Priority    Priority
}
