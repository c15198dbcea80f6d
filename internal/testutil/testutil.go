// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/donatrack/donatrack/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// OpenDB opens a database/sql handle on databaseURL and closes it when the test ends.
func OpenDB(t testing.TB, databaseURL string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	return db
}

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, db *sql.DB) (func() error, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Close()
		if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetData empties the application tables and restarts their id sequences.
// The schema itself must already exist.
func ResetData(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "TRUNCATE donations, projects, users RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// InsertProject inserts a project directly and returns its id.
func InsertProject(ctx context.Context, db *sql.DB, name string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		"INSERT INTO projects (name, description) VALUES ($1, $2) RETURNING id",
		name, "test project "+name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

// InsertDonationAt inserts a donation with an explicit donation_date, which the API never allows.
func InsertDonationAt(ctx context.Context, db *sql.DB, donor string, projectID int64, amount float64, at time.Time) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		"INSERT INTO donations (donor_name, project_id, amount, donation_date) VALUES ($1, $2, $3, $4) RETURNING id",
		donor, projectID, amount, at,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert donation: %w", err)
	}
	return id, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique username and the given stored hash.
func NewTestUser(t testing.TB, passwordHash string) *model.User {
	t.Helper()
	return &model.User{
		ID:           1,
		Username:     UniqueID("user"),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestProject creates a project with sensible defaults.
func NewTestProject(t testing.TB, id int64, name string) *model.Project {
	t.Helper()
	description := "test project " + name
	return &model.Project{
		ID:          id,
		Name:        name,
		Description: &description,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewTestDonation creates a donation dated at the given time.
func NewTestDonation(t testing.TB, id int64, project *model.Project, amount float64, at time.Time) *model.Donation {
	t.Helper()
	d := &model.Donation{
		ID:           id,
		DonorName:    fmt.Sprintf("donor-%d", id),
		Amount:       amount,
		DonationDate: at,
		CreatedAt:    at,
	}
	if project != nil {
		d.ProjectID = &project.ID
		d.ProjectName = &project.Name
	}
	return d
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
