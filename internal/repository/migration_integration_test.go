//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, repo := newIntegrationRepository(t)
	pool := repo.Pool()

	for _, table := range []string{"users", "projects", "donations", "schema_migrations"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_DonationsTableSchema(t *testing.T) {
	ctx, repo := newIntegrationRepository(t)

	for _, col := range []string{"id", "donor_name", "project_id", "amount", "donation_date", "created_at"} {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, repo.Pool(), "donations", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in donations table", col)
			}
		})
	}
}

func TestIntegrationMigration_Idempotent(t *testing.T) {
	ctx, repo := newIntegrationRepository(t)

	ran, err := repo.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if len(ran) != 0 {
		t.Errorf("expected no pending migrations, got %v", ran)
	}
}

func TestIntegrationMigration_AmountCheckConstraint(t *testing.T) {
	ctx, repo := newIntegrationRepository(t)

	_, err := repo.Pool().Exec(ctx, "INSERT INTO donations (donor_name, amount) VALUES ('x', -1)")
	if err == nil {
		t.Fatal("expected negative amount to be rejected")
	}
	if !isCheckViolation(err) {
		t.Errorf("expected check violation, got %v", err)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}
