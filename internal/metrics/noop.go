package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(method, route string, status int, duration time.Duration) {
}

// IncLoginAttempt is a no-op.
func (n *NoopRecorder) IncLoginAttempt(outcome string) {}

// IncDonationCreated is a no-op.
func (n *NoopRecorder) IncDonationCreated() {}

// ObserveDonationAmount is a no-op.
func (n *NoopRecorder) ObserveDonationAmount(amount float64) {}
