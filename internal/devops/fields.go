package devops

import (
	"time"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// Tracker field reference names the SDR schema is stored under.
const (
	fieldTitle          = "System.Title"
	fieldDescription    = "System.Description"
	fieldState          = "System.State"
	fieldAssignedTo     = "System.AssignedTo"
	fieldCreatedDate    = "System.CreatedDate"
	fieldChangedDate    = "System.ChangedDate"
	fieldSubmitterID    = "Custom.SubmitterId"
	fieldSubmitterEmail = "Custom.SubmitterEmail"
	fieldSubmitterName  = "Custom.SubmitterName"
	fieldCustomerType   = "Custom.CustomerType"
	fieldPriority       = "Custom.Priority"
	fieldRequiredByDate = "Custom.RequiredByDate"
	fieldEstimatedHours = "Custom.EstimatedHours"
	fieldActualHours    = "Custom.ActualHours"
	fieldSourceType     = "Custom.SourceType"
	fieldApprovalStatus = "Custom.ApprovalStatus"
)

// fieldPaths maps domain attribute names to patch-document field paths. The
// table is fixed for the life of the process; unknown attributes fall back
// to the Custom namespace.
var fieldPaths = map[string]string{
	"title":          "/fields/" + fieldTitle,
	"description":    "/fields/" + fieldDescription,
	"state":          "/fields/" + fieldState,
	"assignedTo":     "/fields/" + fieldAssignedTo,
	"submitterId":    "/fields/" + fieldSubmitterID,
	"submitterEmail": "/fields/" + fieldSubmitterEmail,
	"submitterName":  "/fields/" + fieldSubmitterName,
	"customerType":   "/fields/" + fieldCustomerType,
	"priority":       "/fields/" + fieldPriority,
	"requiredByDate": "/fields/" + fieldRequiredByDate,
	"estimatedHours": "/fields/" + fieldEstimatedHours,
	"actualHours":    "/fields/" + fieldActualHours,
	"sourceType":     "/fields/" + fieldSourceType,
	"approvalStatus": "/fields/" + fieldApprovalStatus,
}

// FieldPath translates a domain attribute name to its tracker field path.
// It is total: unknown attributes map into the Custom namespace rather than
// failing.
func FieldPath(attr string) string {
	if path, ok := fieldPaths[attr]; ok {
		return path
	}
	return "/fields/Custom." + attr
}

// FromFields reconstructs an SDR from a work item's flat field map. It
// never fails: every attribute has a default used when the tracker record
// lacks the field or holds an unexpected shape, so schema drift on the
// tracker side degrades to defaults instead of errors.
func FromFields(wi WorkItem) models.SDR {
	fields := wi.Fields

	sdr := models.SDR{
		ID:             wi.ID,
		Title:          stringField(fields, fieldTitle),
		Description:    stringField(fields, fieldDescription),
		Status:         models.StatusNew,
		Priority:       models.PriorityMedium,
		CustomerType:   models.CustomerInternal,
		SourceType:     models.SourceManual,
		SubmitterID:    stringField(fields, fieldSubmitterID),
		SubmitterEmail: stringField(fields, fieldSubmitterEmail),
		SubmitterName:  stringField(fields, fieldSubmitterName),
		AssignedTo:     identityField(fields, fieldAssignedTo),
		RequiredByDate: timeField(fields, fieldRequiredByDate),
		EstimatedHours: floatField(fields, fieldEstimatedHours),
		ActualHours:    floatField(fields, fieldActualHours),
	}

	if s := models.Status(stringField(fields, fieldState)); s.Valid() {
		sdr.Status = s
	}
	if p := models.Priority(stringField(fields, fieldPriority)); p.Valid() {
		sdr.Priority = p
	}
	if c := models.CustomerType(stringField(fields, fieldCustomerType)); c.Valid() {
		sdr.CustomerType = c
	}
	if s := models.SourceType(stringField(fields, fieldSourceType)); s.Valid() {
		sdr.SourceType = s
	}

	if t := timeField(fields, fieldCreatedDate); t != nil {
		sdr.CreatedAt = *t
	}
	if t := timeField(fields, fieldChangedDate); t != nil {
		sdr.UpdatedAt = *t
	}

	return sdr
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// identityField reads a field the tracker may return either as a plain
// string or as an identity object with uniqueName/displayName.
func identityField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["uniqueName"].(string); ok && s != "" {
			return s
		}
		if s, ok := v["displayName"].(string); ok {
			return s
		}
	}
	return ""
}

func timeField(fields map[string]any, name string) *time.Time {
	s, ok := fields[name].(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func floatField(fields map[string]any, name string) *float64 {
	switch v := fields[name].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}
