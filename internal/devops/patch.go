package devops

import (
	"time"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// NewAdd returns an add operation targeting the named domain attribute.
func NewAdd(attr string, value any) Operation {
	return Operation{Op: OpAdd, Path: FieldPath(attr), Value: value}
}

// BuildPatch converts a partial update into an ordered patch document.
// Absent fields emit nothing; set fields emit their value; cleared fields
// emit an explicit null. Emission order is fixed (title, description,
// state, priority, customerType, sourceType, requiredByDate, assignedTo,
// estimatedHours, actualHours) so identical input always yields an
// identical document.
func BuildPatch(u models.UpdateRequest) []Operation {
	var ops []Operation

	ops = appendOp(ops, "title", u.Title, asIs[string])
	ops = appendOp(ops, "description", u.Description, asIs[string])
	ops = appendOp(ops, "state", u.Status, asString[models.Status])
	ops = appendOp(ops, "priority", u.Priority, asString[models.Priority])
	ops = appendOp(ops, "customerType", u.CustomerType, asString[models.CustomerType])
	ops = appendOp(ops, "sourceType", u.SourceType, asString[models.SourceType])
	ops = appendOp(ops, "requiredByDate", u.RequiredByDate, asDate)
	ops = appendOp(ops, "assignedTo", u.AssignedTo, asIs[string])
	ops = appendOp(ops, "estimatedHours", u.EstimatedHours, asIs[float64])
	ops = appendOp(ops, "actualHours", u.ActualHours, asIs[float64])

	return ops
}

// appendOp emits one operation for a present tri-state field and nothing
// for an absent one. conv renders the held value for the wire.
func appendOp[T any](ops []Operation, attr string, o models.Optional[T], conv func(T) any) []Operation {
	if !o.Present() {
		return ops
	}
	if o.Null() {
		return append(ops, NewAdd(attr, nil))
	}
	v, _ := o.Get()
	return append(ops, NewAdd(attr, conv(v)))
}

func asIs[T any](v T) any { return v }

func asString[T ~string](v T) any { return string(v) }

func asDate(t time.Time) any { return t.UTC().Format(time.RFC3339) }
