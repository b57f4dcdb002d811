// Package server is the HTTP front door over the SDR engine. It resolves
// the caller identity, shapes requests and responses, and maps the engine's
// error taxonomy onto status codes. It carries no business rules of its
// own.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opsdesk/sdrctl/internal/logging"
	"github.com/opsdesk/sdrctl/internal/sdr"
	"github.com/opsdesk/sdrctl/pkg/models"
)

// Server routes SDR API requests to the engine.
type Server struct {
	service   *sdr.Service
	jwtSecret string
}

// New builds the front door over an engine instance.
func New(service *sdr.Service, jwtSecret string) *Server {
	return &Server{service: service, jwtSecret: jwtSecret}
}

// Router assembles the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/sdr", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Patch("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleRemove)
	})

	return r
}

// createBody is the create payload accepted from callers. The submitter is
// never taken from the body; it comes from the authenticated principal.
type createBody struct {
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Priority       models.Priority     `json:"priority,omitempty"`
	CustomerType   models.CustomerType `json:"customerType,omitempty"`
	SourceType     models.SourceType   `json:"sourceType,omitempty"`
	RequiredByDate *time.Time          `json:"requiredByDate,omitempty"`
	EstimatedHours *float64            `json:"estimatedHours,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body createBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := models.CreateRequest{
		Title:          body.Title,
		Description:    body.Description,
		Priority:       body.Priority,
		CustomerType:   body.CustomerType,
		SourceType:     body.SourceType,
		RequiredByDate: body.RequiredByDate,
		EstimatedHours: body.EstimatedHours,
		Submitter: models.Submitter{
			ID:    principal.ID,
			Name:  principal.Name,
			Email: principal.Email,
		},
	}

	created, err := s.service.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.Filter{
		SubmitterID: q.Get("submitterId"),
		AssignedTo:  q.Get("assignedTo"),
		State:       models.Status(q.Get("state")),
		Priority:    models.Priority(q.Get("priority")),
	}

	items, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sdrs":       items,
		"totalCount": len(items),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.service.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.service.Remove(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps the engine's error taxonomy onto HTTP statuses.
// Anything outside the taxonomy becomes an opaque 500; internal detail is
// never leaked to callers.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "validation failed",
			"errors":  validationErr.Fields,
		})
		return
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	logging.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
