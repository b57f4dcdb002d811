package sdr

import (
	"fmt"
	"regexp"
	"time"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// Constraint limits for caller-supplied fields.
const (
	titleMinLen       = 5
	titleMaxLen       = 200
	descriptionMinLen = 10
	descriptionMaxLen = 5000
	hoursMax          = 1000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateCreate checks every constraint on a create request and returns
// the full list of violations, never just the first.
func validateCreate(req models.CreateRequest, now time.Time) []models.FieldError {
	var errs []models.FieldError

	if req.Title == "" {
		errs = append(errs, models.FieldError{Field: "title", Reason: "title is required"})
	} else if l := len(req.Title); l < titleMinLen || l > titleMaxLen {
		errs = append(errs, models.FieldError{
			Field:  "title",
			Reason: fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen),
		})
	}

	if req.Description != "" {
		if l := len(req.Description); l < descriptionMinLen || l > descriptionMaxLen {
			errs = append(errs, models.FieldError{
				Field:  "description",
				Reason: fmt.Sprintf("description must be between %d and %d characters", descriptionMinLen, descriptionMaxLen),
			})
		}
	}

	if req.Priority != "" && !req.Priority.Valid() {
		errs = append(errs, models.FieldError{Field: "priority", Reason: "unknown priority"})
	}
	if req.CustomerType != "" && !req.CustomerType.Valid() {
		errs = append(errs, models.FieldError{Field: "customerType", Reason: "unknown customer type"})
	}
	if req.SourceType != "" && !req.SourceType.Valid() {
		errs = append(errs, models.FieldError{Field: "sourceType", Reason: "unknown source type"})
	}

	if req.RequiredByDate != nil && !req.RequiredByDate.After(now) {
		errs = append(errs, models.FieldError{Field: "requiredByDate", Reason: "required-by date must be in the future"})
	}

	if req.EstimatedHours != nil {
		if h := *req.EstimatedHours; h <= 0 || h > hoursMax {
			errs = append(errs, models.FieldError{
				Field:  "estimatedHours",
				Reason: fmt.Sprintf("estimated hours must be positive and at most %d", hoursMax),
			})
		}
	}

	if req.Submitter.ID == "" {
		errs = append(errs, models.FieldError{Field: "submitter.id", Reason: "submitter id is required"})
	}
	if req.Submitter.Name == "" {
		errs = append(errs, models.FieldError{Field: "submitter.name", Reason: "submitter name is required"})
	}
	if req.Submitter.Email == "" {
		errs = append(errs, models.FieldError{Field: "submitter.email", Reason: "submitter email is required"})
	} else if !emailPattern.MatchString(req.Submitter.Email) {
		errs = append(errs, models.FieldError{Field: "submitter.email", Reason: "submitter email is not a valid address"})
	}

	return errs
}

// validateUpdate checks the constraints on every present field of a partial
// update. Cleared (null) fields carry no value to check and pass; the
// clearing itself is always legal at this layer.
func validateUpdate(u models.UpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if title, ok := u.Title.Get(); ok {
		if l := len(title); l < titleMinLen || l > titleMaxLen {
			errs = append(errs, models.FieldError{
				Field:  "title",
				Reason: fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen),
			})
		}
	} else if u.Title.Null() {
		// A work item cannot exist without a title.
		errs = append(errs, models.FieldError{Field: "title", Reason: "title cannot be cleared"})
	}

	if desc, ok := u.Description.Get(); ok {
		if l := len(desc); l < descriptionMinLen || l > descriptionMaxLen {
			errs = append(errs, models.FieldError{
				Field:  "description",
				Reason: fmt.Sprintf("description must be between %d and %d characters", descriptionMinLen, descriptionMaxLen),
			})
		}
	}

	if status, ok := u.Status.Get(); ok && !status.Valid() {
		errs = append(errs, models.FieldError{Field: "status", Reason: "unknown status"})
	}
	if priority, ok := u.Priority.Get(); ok && !priority.Valid() {
		errs = append(errs, models.FieldError{Field: "priority", Reason: "unknown priority"})
	}
	if ct, ok := u.CustomerType.Get(); ok && !ct.Valid() {
		errs = append(errs, models.FieldError{Field: "customerType", Reason: "unknown customer type"})
	}
	if st, ok := u.SourceType.Get(); ok && !st.Valid() {
		errs = append(errs, models.FieldError{Field: "sourceType", Reason: "unknown source type"})
	}

	if assignee, ok := u.AssignedTo.Get(); ok && !emailPattern.MatchString(assignee) {
		errs = append(errs, models.FieldError{Field: "assignedTo", Reason: "assignee must be an email address"})
	}

	for _, hours := range []struct {
		field string
		value models.Optional[float64]
	}{
		{"estimatedHours", u.EstimatedHours},
		{"actualHours", u.ActualHours},
	} {
		if h, ok := hours.value.Get(); ok && (h <= 0 || h > hoursMax) {
			errs = append(errs, models.FieldError{
				Field:  hours.field,
				Reason: fmt.Sprintf("%s must be positive and at most %d", hours.field, hoursMax),
			})
		}
	}

	return errs
}
