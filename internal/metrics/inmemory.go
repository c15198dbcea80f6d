package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestCount           uint64
	RequestDurationTotalNs int64
	LoginAttempts          map[string]uint64
	DonationsCreated       uint64
	DonationAmountTotal    float64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requestCount           uint64
	requestDurationTotalNs int64
	donationsCreated       uint64

	mu            sync.Mutex
	loginAttempts map[string]uint64
	amountTotal   float64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{loginAttempts: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	attempts := make(map[string]uint64, len(m.loginAttempts))
	for k, v := range m.loginAttempts {
		attempts[k] = v
	}
	amount := m.amountTotal
	m.mu.Unlock()

	return Snapshot{
		RequestCount:           atomic.LoadUint64(&m.requestCount),
		RequestDurationTotalNs: atomic.LoadInt64(&m.requestDurationTotalNs),
		LoginAttempts:          attempts,
		DonationsCreated:       atomic.LoadUint64(&m.donationsCreated),
		DonationAmountTotal:    amount,
	}
}

// ObserveRequestDuration records a served request.
func (m *InMemoryRecorder) ObserveRequestDuration(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddInt64(&m.requestDurationTotalNs, duration.Nanoseconds())
}

// IncLoginAttempt counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLoginAttempt(outcome string) {
	m.mu.Lock()
	m.loginAttempts[outcome]++
	m.mu.Unlock()
}

// IncDonationCreated increments donation created counter.
func (m *InMemoryRecorder) IncDonationCreated() {
	atomic.AddUint64(&m.donationsCreated, 1)
}

// ObserveDonationAmount adds to the donated total.
func (m *InMemoryRecorder) ObserveDonationAmount(amount float64) {
	m.mu.Lock()
	m.amountTotal += amount
	m.mu.Unlock()
}
