package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/donatrack/donatrack/internal/model"
)

const (
	projectsKey = "projects:all"

	// ProjectsTTL bounds how stale the cached project list may get.
	ProjectsTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetProjects returns the cached project list.
// Returns ErrCacheMiss if nothing is cached or the entry is unreadable.
func (c *Cache) GetProjects(ctx context.Context) ([]*model.Project, error) {
	data, err := c.client.Get(ctx, projectsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var projects []*model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, ErrCacheMiss
	}
	return projects, nil
}

// SetProjects caches the project list.
func (c *Cache) SetProjects(ctx context.Context, projects []*model.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("marshal projects: %w", err)
	}
	return c.client.Set(ctx, projectsKey, data, ProjectsTTL).Err()
}

// InvalidateProjects drops the cached project list.
func (c *Cache) InvalidateProjects(ctx context.Context) error {
	return c.client.Del(ctx, projectsKey).Err()
}
