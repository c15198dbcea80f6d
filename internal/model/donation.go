package model

import (
	"math"
	"time"
)

// DateLayout is the calendar date format used in URLs and aggregates.
const DateLayout = "2006-01-02"

// MaxAmount is the largest amount the NUMERIC(10,2) column can hold.
const MaxAmount = 99999999.99

// MaxProjectID is the largest id the INTEGER project key can hold.
const MaxProjectID = math.MaxInt32

// Donation is a monetary contribution linked to a project.
type Donation struct {
	ID           int64     `json:"id"`
	DonorName    string    `json:"donor_name"`
	ProjectID    *int64    `json:"project_id,omitempty"`
	ProjectName  *string   `json:"project_name"`
	Amount       float64   `json:"amount"`
	DonationDate time.Time `json:"donation_date"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// DailyTotal aggregates all donations recorded on one calendar day.
type DailyTotal struct {
	Date          string  `json:"date"`
	TotalAmount   float64 `json:"total_amount"`
	DonationCount int64   `json:"donation_count"`
}

// Dashboard is the summary of a single day.
type Dashboard struct {
	Date        string         `json:"date"`
	TotalAmount float64        `json:"totalAmount"`
	ByProject   []ProjectTotal `json:"byProject"`
	Donations   []*Donation    `json:"donations"`
}

// RoundAmount rounds an amount to whole cents.
func RoundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// SumAmounts totals donation amounts in cents to avoid float drift.
func SumAmounts(donations []*Donation) float64 {
	var cents int64
	for _, d := range donations {
		cents += int64(math.Round(d.Amount * 100))
	}
	return float64(cents) / 100
}

// DayBounds returns the [start, end) interval of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
