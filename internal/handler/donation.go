package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/donatrack/donatrack/internal/handler/dto"
	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/service"
)

// DonationService is the donation API used by DonationHandler.
type DonationService interface {
	Create(ctx context.Context, input service.CreateDonationInput) (*model.Donation, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
	History(ctx context.Context) ([]model.DailyTotal, error)
	ByDate(ctx context.Context, date string) ([]*model.Donation, error)
}

// DonationHandler handles donation and dashboard endpoints.
type DonationHandler struct {
	service DonationService
	logger  *slog.Logger
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(svc DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{
		service: svc,
		logger:  logger,
	}
}

// Dashboard returns today's totals and donations.
// GET /api/dashboard
func (h *DonationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Create records a donation.
// POST /api/donations
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDonationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	donation, err := h.service.Create(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, donation)
}

// History returns per-day totals, newest first.
// GET /api/donations/history
func (h *DonationHandler) History(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.History(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// ByDate returns the donations of one calendar date.
// GET /api/donations/date/{date}
func (h *DonationHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}
