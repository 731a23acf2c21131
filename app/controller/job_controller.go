package controller

import (
	"net/http"

	"catalogo-armazones/logger"
	"catalogo-armazones/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JobController reports batch job progress
type JobController struct {
	jobs   *service.JobRegistry
	logger *zap.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobs *service.JobRegistry, log *zap.Logger) *JobController {
	return &JobController{jobs: jobs, logger: logger.OrNop(log)}
}

// GetJob handles GET /api/jobs/{id}
func (c *JobController) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := c.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, job)
}
