package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/donatrack/donatrack/internal/model"
)

// Common errors for donation repository operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
)

// donationColumns is shared by every query returning donations joined with their project.
const donationColumns = `d.id, d.donor_name, d.project_id, p.name, d.amount::float8, d.donation_date, d.created_at`

// CreateDonation inserts a donation with server-assigned timestamps.
// The returned record carries the project name.
func (r *Repository) CreateDonation(ctx context.Context, donorName string, projectID int64, amount float64) (*model.Donation, error) {
	if projectID <= 0 || projectID > model.MaxProjectID {
		return nil, ErrProjectNotFound
	}
	if amount <= 0 || amount > model.MaxAmount {
		return nil, ErrInvalidAmount
	}

	query := `
		WITH d AS (
			INSERT INTO donations (donor_name, project_id, amount)
			VALUES ($1, $2, $3)
			RETURNING id, donor_name, project_id, amount, donation_date, created_at
		)
		SELECT ` + donationColumns + `
		FROM d
		LEFT JOIN projects p ON p.id = d.project_id
	`

	donation, err := scanDonation(r.pool.QueryRow(ctx, query, donorName, projectID, amount))
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return nil, ErrProjectNotFound
		case isCheckViolation(err):
			return nil, ErrInvalidAmount
		}
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	return donation, nil
}

// ListDonationsBetween returns donations dated in [start, end), newest first.
func (r *Repository) ListDonationsBetween(ctx context.Context, start, end time.Time) ([]*model.Donation, error) {
	return listDonationsBetween(ctx, r.pool, start, end)
}

// DailySummary computes the dashboard aggregates for [start, end).
// Both reads share one repeatable-read snapshot. The day total is summed from the
// listed donations, so it always matches them.
func (r *Repository) DailySummary(ctx context.Context, start, end time.Time) (float64, []model.ProjectTotal, []*model.Donation, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(d.amount), 0)::float8 AS total
		FROM projects p
		LEFT JOIN donations d
			ON d.project_id = p.id
			AND d.donation_date >= $1 AND d.donation_date < $2
		GROUP BY p.id, p.name
		ORDER BY total DESC, p.name
	`, start, end)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to total donations by project: %w", err)
	}
	byProject, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProjectTotal, error) {
		var pt model.ProjectTotal
		err := row.Scan(&pt.ProjectID, &pt.ProjectName, &pt.Total)
		return pt, err
	})
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to scan project totals: %w", err)
	}

	donations, err := listDonationsBetween(ctx, tx, start, end)
	if err != nil {
		return 0, nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, nil, fmt.Errorf("failed to commit summary transaction: %w", err)
	}

	return model.SumAmounts(donations), byProject, donations, nil
}

// DailyTotals returns per-day totals across all donations, newest day first.
// Days are calendar days in the named timezone.
func (r *Repository) DailyTotals(ctx context.Context, timezone string) ([]model.DailyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char((donation_date AT TIME ZONE $1)::date, 'YYYY-MM-DD') AS day,
		       SUM(amount)::float8,
		       COUNT(*)
		FROM donations
		GROUP BY day
		ORDER BY day DESC
	`, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily totals: %w", err)
	}

	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DailyTotal, error) {
		var dt model.DailyTotal
		err := row.Scan(&dt.Date, &dt.TotalAmount, &dt.DonationCount)
		return dt, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily totals: %w", err)
	}

	return totals, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listDonationsBetween(ctx context.Context, q querier, start, end time.Time) ([]*model.Donation, error) {
	rows, err := q.Query(ctx, `
		SELECT `+donationColumns+`
		FROM donations d
		LEFT JOIN projects p ON p.id = d.project_id
		WHERE d.donation_date >= $1 AND d.donation_date < $2
		ORDER BY d.donation_date DESC, d.id DESC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	donations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Donation, error) {
		return scanDonation(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan donations: %w", err)
	}

	return donations, nil
}

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var d model.Donation
	err := row.Scan(
		&d.ID,
		&d.DonorName,
		&d.ProjectID,
		&d.ProjectName,
		&d.Amount,
		&d.DonationDate,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
