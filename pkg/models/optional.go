package models

import (
	"encoding/json"
	"time"
)

// Optional is a tri-state field value for partial updates: absent (the zero
// value, meaning "leave unchanged"), set to a value, or explicitly null
// (meaning "clear"). Absent and null are different wire states and must stay
// distinct all the way to the patch document.
type Optional[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{present: true, value: v}
}

// Clear returns an Optional that is present but null.
func Clear[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Present reports whether the field was supplied at all (set or null).
func (o Optional[T]) Present() bool { return o.present }

// Null reports whether the field was explicitly cleared.
func (o Optional[T]) Null() bool { return o.present && o.null }

// Get returns the held value and whether one is held (present and not null).
func (o Optional[T]) Get() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// UnmarshalJSON distinguishes a JSON null (clear) from a value (set). A key
// that is missing entirely never reaches UnmarshalJSON, so the zero value
// keeps meaning "absent".
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Set(v)
	return nil
}

// MarshalJSON renders null for cleared or absent fields and the value
// otherwise. Marshalling cannot express "absent"; it exists for logging and
// test output, not for wire round-trips.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UpdateRequest is a partial SDR update. Every field is tri-state: absent
// fields are untouched, set fields are written, cleared fields are nulled on
// the work item.
type UpdateRequest struct {
	Title          Optional[string]       `json:"title,omitempty"`
	Description    Optional[string]       `json:"description,omitempty"`
	Status         Optional[Status]       `json:"status,omitempty"`
	Priority       Optional[Priority]     `json:"priority,omitempty"`
	CustomerType   Optional[CustomerType] `json:"customerType,omitempty"`
	SourceType     Optional[SourceType]   `json:"sourceType,omitempty"`
	RequiredByDate Optional[time.Time]    `json:"requiredByDate,omitempty"`
	AssignedTo     Optional[string]       `json:"assignedTo,omitempty"`
	EstimatedHours Optional[float64]      `json:"estimatedHours,omitempty"`
	ActualHours    Optional[float64]      `json:"actualHours,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u UpdateRequest) Empty() bool {
	return !u.Title.Present() && !u.Description.Present() && !u.Status.Present() &&
		!u.Priority.Present() && !u.CustomerType.Present() && !u.SourceType.Present() &&
		!u.RequiredByDate.Present() && !u.AssignedTo.Present() &&
		!u.EstimatedHours.Present() && !u.ActualHours.Present()
}
