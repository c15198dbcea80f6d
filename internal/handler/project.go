package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/donatrack/donatrack/internal/model"
)

// ProjectLister is the project API used by ProjectHandler.
type ProjectLister interface {
	List(ctx context.Context) ([]*model.Project, error)
}

// ProjectHandler serves the project list.
type ProjectHandler struct {
	service ProjectLister
	logger  *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc ProjectLister, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: svc,
		logger:  logger,
	}
}

// List returns all projects ordered by name.
// GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}
