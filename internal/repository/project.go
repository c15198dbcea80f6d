package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/donatrack/donatrack/internal/model"
)

// ListProjects returns every project ordered by name.
func (r *Repository) ListProjects(ctx context.Context) ([]*model.Project, error) {
	query := `
		SELECT id, name, description, created_at
		FROM projects
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Project, error) {
		var p model.Project
		err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
		return &p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}

	return projects, nil
}

// CountProjects returns the number of projects.
func (r *Repository) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// CreateProject inserts a project and fills in its ID and creation time.
func (r *Repository) CreateProject(ctx context.Context, project *model.Project) error {
	query := `
		INSERT INTO projects (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.pool.QueryRow(ctx, query, project.Name, project.Description).Scan(&project.ID, &project.CreatedAt); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}
