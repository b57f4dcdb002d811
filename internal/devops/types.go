// Package devops wraps the Azure DevOps work-item REST API: field-path
// translation, patch-document construction, WIQL query building, and the
// authenticated HTTP transport. It is the only package in the core that
// performs network I/O.
package devops

// WorkItemType is the work-item type every SDR is stored as.
const WorkItemType = "SDR Request"

// apiVersion pins all requests to one tracker API revision.
const apiVersion = "7.0"

// WorkItem is the tracker's wire representation of a work item: an identity
// plus a flat field map keyed by reference name.
type WorkItem struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev,omitempty"`
	URL    string         `json:"url,omitempty"`
	Fields map[string]any `json:"fields"`
}

// workItemList is the envelope of a batch get.
type workItemList struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}

// workItemRef is a WIQL result entry: identity only, no fields.
type workItemRef struct {
	ID  int    `json:"id"`
	URL string `json:"url,omitempty"`
}

// queryResult is the envelope of a WIQL query response.
type queryResult struct {
	QueryType string        `json:"queryType,omitempty"`
	WorkItems []workItemRef `json:"workItems"`
}

// wiqlRequest is the body of a WIQL query call.
type wiqlRequest struct {
	Query string `json:"query"`
}

// OpAdd is the only patch verb the engine emits; the tracker treats add as
// an upsert for field paths.
const OpAdd = "add"

// Operation is one entry of a JSON-patch-shaped work-item update. Value is
// serialized even when nil: an explicit null clears the field, which is a
// different wire state from omitting the operation.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}
