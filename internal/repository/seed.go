package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/donatrack/donatrack/internal/model"
)

// AdminUsername is the account created by Seed.
const AdminUsername = "admin"

// DefaultProjects are inserted by Seed when the projects table is empty.
var DefaultProjects = []model.Project{
	{Name: "Aide aux familles démunies", Description: strPtr("Soutien financier pour les familles en difficulté")},
	{Name: "Éducation des enfants", Description: strPtr("Financement de la scolarité et du matériel éducatif")},
	{Name: "Soins médicaux", Description: strPtr("Aide pour les soins de santé des plus démunis")},
	{Name: "Urgences", Description: strPtr("Fonds d'urgence pour les situations critiques")},
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	AdminCreated    bool
	ProjectsCreated int
}

// Seed creates the admin user and the default projects if they are missing.
// hash turns the admin password into its stored form. Existing rows are never modified.
func (r *Repository) Seed(ctx context.Context, adminPassword string, hash func(string) (string, error)) (*SeedResult, error) {
	result := &SeedResult{}

	_, err := r.GetUserByUsername(ctx, AdminUsername)
	switch {
	case errors.Is(err, ErrUserNotFound):
		passwordHash, err := hash(adminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &model.User{Username: AdminUsername, PasswordHash: passwordHash}
		err = r.CreateUser(ctx, admin)
		if err != nil && !errors.Is(err, ErrUsernameExists) {
			return nil, err
		}
		result.AdminCreated = err == nil
	case err != nil:
		return nil, err
	}

	count, err := r.CountProjects(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return result, nil
	}

	for _, p := range DefaultProjects {
		project := p
		if err := r.CreateProject(ctx, &project); err != nil {
			return nil, err
		}
		result.ProjectsCreated++
	}

	return result, nil
}

func strPtr(s string) *string {
	return &s
}
