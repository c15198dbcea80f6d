// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login attempt outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginRateLimited        = "rate_limited"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// HTTP metrics
	ObserveRequestDuration(method, route string, status int, duration time.Duration)

	// Authentication metrics
	IncLoginAttempt(outcome string)

	// Donation metrics
	IncDonationCreated()
	ObserveDonationAmount(amount float64)
}

