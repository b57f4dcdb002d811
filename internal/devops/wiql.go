package devops

import (
	"fmt"
	"strings"

	"github.com/opsdesk/sdrctl/pkg/models"
)

// wiqlSelect scopes every query to the SDR work-item type.
const wiqlSelect = "SELECT [System.Id], [System.Title], [System.State], [Custom.Priority] " +
	"FROM workitems WHERE [System.WorkItemType] = 'SDR Request'"

// wiqlOrder fixes the result ordering to newest change first.
const wiqlOrder = " ORDER BY [System.ChangedDate] DESC"

// BuildWIQL compiles a filter into a WIQL query string. Predicate clauses
// are appended in a fixed order (submitter, assignee, state, priority) so
// the output is byte-for-byte reproducible for identical input. Predicate
// values are escaped as WIQL string literals; values that cannot be safely
// represented are rejected.
func BuildWIQL(f models.Filter) (string, error) {
	var b strings.Builder
	b.WriteString(wiqlSelect)

	clauses := []struct {
		field string
		value string
	}{
		{"Custom.SubmitterId", f.SubmitterID},
		{"System.AssignedTo", f.AssignedTo},
		{"System.State", string(f.State)},
		{"Custom.Priority", string(f.Priority)},
	}

	for _, c := range clauses {
		if c.value == "" {
			continue
		}
		escaped, err := escapeWIQL(c.value)
		if err != nil {
			return "", fmt.Errorf("invalid filter value for %s: %w", c.field, err)
		}
		fmt.Fprintf(&b, " AND [%s] = '%s'", c.field, escaped)
	}

	b.WriteString(wiqlOrder)
	return b.String(), nil
}

// escapeWIQL renders a value as a WIQL string-literal body. Single quotes
// are doubled per the query language's escaping rule; control characters
// have no safe representation and are rejected outright.
func escapeWIQL(value string) (string, error) {
	for _, r := range value {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("control character %q not allowed", r)
		}
	}
	return strings.ReplaceAll(value, "'", "''"), nil
}
