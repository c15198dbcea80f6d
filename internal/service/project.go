package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/donatrack/donatrack/internal/cache"
	"github.com/donatrack/donatrack/internal/model"
)

// ProjectStore is the persistence needed by ProjectService.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]*model.Project, error)
}

// ProjectCache stores the project list between requests.
type ProjectCache interface {
	GetProjects(ctx context.Context) ([]*model.Project, error)
	SetProjects(ctx context.Context, projects []*model.Project) error
}

// ProjectService serves the project list, read-through cached.
type ProjectService struct {
	store  ProjectStore
	cache  ProjectCache
	logger *slog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store ProjectStore, projectCache ProjectCache, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectService{
		store:  store,
		cache:  projectCache,
		logger: logger.With("component", "projects"),
	}
}

// List returns all projects ordered by name.
func (s *ProjectService) List(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.cache.GetProjects(ctx)
	if err == nil {
		return projects, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("project cache read failed", "error", err)
	}

	projects, err = s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if projects == nil {
		projects = []*model.Project{}
	}

	if err := s.cache.SetProjects(ctx, projects); err != nil {
		s.logger.Warn("project cache write failed", "error", err)
	}

	return projects, nil
}
