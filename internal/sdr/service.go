// Package sdr implements the SDR synchronization engine: it validates and
// enriches domain requests, translates them through the devops package, and
// reconstructs authoritative domain entities from tracker responses.
package sdr

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/opsdesk/sdrctl/internal/devops"
	"github.com/opsdesk/sdrctl/internal/logging"
	"github.com/opsdesk/sdrctl/pkg/models"
)

// defaultRequiredBy is how far out the required-by date is set when the
// caller leaves it empty.
const defaultRequiredBy = 30 * 24 * time.Hour

// Service orchestrates SDR operations against the work-item tracker. It
// holds no state of its own; every operation is an independent unit of work
// suspending only at the transport's network calls.
type Service struct {
	client *devops.Client
	now    func() time.Time
}

// NewService builds the orchestrator over a transport client.
func NewService(client *devops.Client) *Service {
	return &Service{
		client: client,
		now:    time.Now,
	}
}

// applyDefaults fills the optional create fields. This is the single source
// of truth for create-time defaults; read-time fallbacks live in
// devops.FromFields.
func (s *Service) applyDefaults(req models.CreateRequest) models.CreateRequest {
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.CustomerType == "" {
		req.CustomerType = models.CustomerInternal
	}
	if req.SourceType == "" {
		req.SourceType = models.SourceManual
	}
	if req.RequiredByDate == nil {
		t := s.now().Add(defaultRequiredBy)
		req.RequiredByDate = &t
	}
	return req
}

// Create validates, enriches, and persists a new SDR. Validation failures
// carry every violated constraint and are returned before any network call
// is made. On success the returned entity has the tracker-assigned id,
// status New, and both timestamps set to the moment of creation.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.SDR, error) {
	req = s.applyDefaults(req)

	if fieldErrs := validateCreate(req, s.now()); len(fieldErrs) > 0 {
		return nil, &models.ValidationError{Fields: fieldErrs}
	}

	ops := []devops.Operation{
		devops.NewAdd("title", req.Title),
	}
	if req.Description != "" {
		ops = append(ops, devops.NewAdd("description", req.Description))
	}
	ops = append(ops,
		devops.NewAdd("priority", string(req.Priority)),
		devops.NewAdd("customerType", string(req.CustomerType)),
		devops.NewAdd("sourceType", string(req.SourceType)),
		devops.NewAdd("requiredByDate", req.RequiredByDate.UTC().Format(time.RFC3339)),
		devops.NewAdd("submitterId", req.Submitter.ID),
		devops.NewAdd("submitterName", req.Submitter.Name),
		devops.NewAdd("submitterEmail", req.Submitter.Email),
	)
	if req.EstimatedHours != nil {
		ops = append(ops, devops.NewAdd("estimatedHours", *req.EstimatedHours))
	}

	wi, err := s.client.CreateWorkItem(ctx, ops)
	if err != nil {
		logging.Error("failed to create work item", "submitter", req.Submitter.ID, "error", err)
		return nil, err
	}

	created := s.now()
	sdr := &models.SDR{
		ID:             wi.ID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.StatusNew,
		Priority:       req.Priority,
		CustomerType:   req.CustomerType,
		SourceType:     req.SourceType,
		RequiredByDate: req.RequiredByDate,
		SubmitterID:    req.Submitter.ID,
		SubmitterName:  req.Submitter.Name,
		SubmitterEmail: req.Submitter.Email,
		EstimatedHours: req.EstimatedHours,
		CreatedAt:      created,
		UpdatedAt:      created,
	}

	logging.Info("sdr created", "id", sdr.ID, "submitter", sdr.SubmitterID)
	return sdr, nil
}

// Get fetches one SDR by id. A tracker 404 is reported as NotFoundError.
func (s *Service) Get(ctx context.Context, id int) (*models.SDR, error) {
	wi, err := s.client.GetWorkItem(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, id)
	}

	sdr := devops.FromFields(*wi)
	return &sdr, nil
}

// List returns the SDRs matching the filter, newest change first (the
// tracker's ordering; the engine does not re-sort). An empty match set
// short-circuits without a batch fetch.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.SDR, error) {
	wiql, err := devops.BuildWIQL(filter)
	if err != nil {
		return nil, &models.ValidationError{Fields: []models.FieldError{
			{Field: "filter", Reason: err.Error()},
		}}
	}

	ids, err := s.client.QueryIDs(ctx, wiql)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		logging.Debug("filter matched no work items")
		return []models.SDR{}, nil
	}

	items, err := s.client.GetWorkItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	sdrs := make([]models.SDR, len(items))
	for i, wi := range items {
		sdrs[i] = devops.FromFields(wi)
	}

	logging.Debug("listed sdrs", "count", len(sdrs))
	return sdrs, nil
}

// Update applies a partial update and re-reads the full entity so the
// caller always observes the authoritative post-update state, including any
// concurrent writers' changes. A failed patch surfaces without the re-read.
func (s *Service) Update(ctx context.Context, id int, req models.UpdateRequest) (*models.SDR, error) {
	if fieldErrs := validateUpdate(req); len(fieldErrs) > 0 {
		return nil, &models.ValidationError{Fields: fieldErrs}
	}

	ops := devops.BuildPatch(req)
	if len(ops) == 0 {
		return s.Get(ctx, id)
	}

	if _, err := s.client.UpdateWorkItem(ctx, id, ops); err != nil {
		logging.Error("failed to update work item", "id", id, "error", err)
		return nil, mapNotFound(err, id)
	}

	logging.Info("sdr updated", "id", id, "fields", len(ops))
	return s.Get(ctx, id)
}

// Remove soft-deletes an SDR by closing it. The work item is never
// destructively deleted, preserving the audit history.
func (s *Service) Remove(ctx context.Context, id int) error {
	_, err := s.Update(ctx, id, models.UpdateRequest{
		Status: models.Set(models.StatusClosed),
	})
	if err != nil {
		return err
	}

	logging.Info("sdr closed", "id", id)
	return nil
}

// Ping verifies tracker connectivity and credentials with a cheap
// authenticated call. It fetches no SDRs.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.TestConnection(ctx)
}

// mapNotFound translates a transport-level 404 into the domain taxonomy so
// callers can branch on error kind instead of status codes.
func mapNotFound(err error, id int) error {
	var te *models.TransportError
	if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
		return &models.NotFoundError{ID: id}
	}
	return err
}
