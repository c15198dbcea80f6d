package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donatrack/donatrack/internal/metrics"
	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/repository"
)

// DonationStore is the persistence needed by DonationService.
type DonationStore interface {
	CreateDonation(ctx context.Context, donorName string, projectID int64, amount float64) (*model.Donation, error)
	DailySummary(ctx context.Context, start, end time.Time) (float64, []model.ProjectTotal, []*model.Donation, error)
	ListDonationsBetween(ctx context.Context, start, end time.Time) ([]*model.Donation, error)
	DailyTotals(ctx context.Context, timezone string) ([]model.DailyTotal, error)
}

// CreateDonationInput defines input for recording a donation.
// A nil ProjectID or Amount means the client sent no usable value.
type CreateDonationInput struct {
	DonorName string   `json:"donor_name" validate:"required,max=100"`
	ProjectID *int64   `json:"project_id" validate:"required,gt=0,lte=2147483647"`
	Amount    *float64 `json:"amount" validate:"required,gt=0,lte=99999999.99"`
}

// DonationService handles donation recording and reporting.
type DonationService struct {
	store   DonationStore
	loc     *time.Location
	now     func() time.Time
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewDonationService creates a new DonationService.
// loc defines calendar days for the dashboard and history.
func NewDonationService(store DonationStore, loc *time.Location, recorder metrics.Recorder, logger *slog.Logger) *DonationService {
	if loc == nil {
		loc = time.UTC
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DonationService{
		store:   store,
		loc:     loc,
		now:     time.Now,
		metrics: recorder,
		logger:  logger.With("component", "donations"),
	}
}

// Create validates and records a donation.
func (s *DonationService) Create(ctx context.Context, input CreateDonationInput) (*model.Donation, error) {
	input.DonorName = normalizeText(input.DonorName)
	if input.Amount != nil {
		rounded := model.RoundAmount(*input.Amount)
		input.Amount = &rounded
	}

	if err := validateStruct(&input); err != nil {
		return nil, err
	}

	donation, err := s.store.CreateDonation(ctx, input.DonorName, *input.ProjectID, *input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, newFieldError("project_id", "Project not found")
		case errors.Is(err, repository.ErrInvalidAmount):
			return nil, newFieldError("amount", fieldMessages["amount"])
		}
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	s.metrics.IncDonationCreated()
	s.metrics.ObserveDonationAmount(donation.Amount)
	s.logger.Info("donation recorded", "donation_id", donation.ID, "project_id", *input.ProjectID)

	return donation, nil
}

// Dashboard summarizes the current calendar day.
func (s *DonationService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	now := s.now()
	start, end := model.DayBounds(now, s.loc)

	total, byProject, donations, err := s.store.DailySummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	if byProject == nil {
		byProject = []model.ProjectTotal{}
	}
	if donations == nil {
		donations = []*model.Donation{}
	}

	return &model.Dashboard{
		Date:        start.Format(model.DateLayout),
		TotalAmount: model.RoundAmount(total),
		ByProject:   byProject,
		Donations:   donations,
	}, nil
}

// History returns per-day totals across all donations, newest first.
func (s *DonationService) History(ctx context.Context) ([]model.DailyTotal, error) {
	totals, err := s.store.DailyTotals(ctx, s.loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if totals == nil {
		totals = []model.DailyTotal{}
	}
	return totals, nil
}

// ByDate returns the donations recorded on one calendar date (YYYY-MM-DD), newest first.
func (s *DonationService) ByDate(ctx context.Context, date string) ([]*model.Donation, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, s.loc)
	if err != nil {
		return nil, newFieldError("date", "Date must use the YYYY-MM-DD format")
	}

	start, end := model.DayBounds(day, s.loc)
	donations, err := s.store.ListDonationsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations for %s: %w", date, err)
	}
	if donations == nil {
		donations = []*model.Donation{}
	}
	return donations, nil
}
