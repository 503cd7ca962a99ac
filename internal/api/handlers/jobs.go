package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/gcsuploader"
	"github.com/dvloznov/finance-ledger/internal/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ImportsHandler enqueues asynchronous imports of files stored in GCS.
type ImportsHandler struct {
	publisher  jobs.Publisher
	maxRetries int
	log        zerolog.Logger
}

// NewImportsHandler creates a new imports handler. A nil publisher disables
// asynchronous imports.
func NewImportsHandler(publisher jobs.Publisher, maxRetries int, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		publisher:  publisher,
		maxRetries: maxRetries,
		log:        log,
	}
}

// EnqueueImport handles POST /api/imports
func (h *ImportsHandler) EnqueueImport(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Asynchronous imports are not configured")
		return
	}

	var req struct {
		GCSURI string `json:"gcs_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, _, err := gcsuploader.ParseGCSURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.ImportFileJob{
		GCSURI:     req.GCSURI,
		MaxRetries: h.maxRetries,
	}

	if err := h.publisher.PublishImportFile(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", req.GCSURI).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": req.GCSURI,
		"status":  string(jobs.JobStatusPending),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
