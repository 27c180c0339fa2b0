package booking

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loftgolf/booking-platform/internal/observability/metrics"
	"github.com/loftgolf/booking-platform/internal/uschedule"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// Manager is the in-memory registry of live booking orchestrators, keyed
// by session id. Sessions idle past the configured timeout are evicted
// lazily on access and in Sweep.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*managedSession
	api         SchedulingAPI
	logger      *logging.Logger
	metrics     *metrics.BookingMetrics
	idleTimeout time.Duration
}

type managedSession struct {
	orchestrator *Orchestrator
	lastAccess   time.Time
}

// NewManager creates a session registry backed by the given vendor API.
func NewManager(api SchedulingAPI, logger *logging.Logger, m *metrics.BookingMetrics, idleTimeout time.Duration) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:    make(map[uuid.UUID]*managedSession),
		api:         api,
		logger:      logger,
		metrics:     m,
		idleTimeout: idleTimeout,
	}
}

// Create starts a new orchestrator bound to an authenticated vendor
// session and returns its id.
func (m *Manager) Create(vendor *uschedule.Session) (uuid.UUID, *Orchestrator) {
	o := NewOrchestrator(m.api, vendor, m.logger, WithBookingMetrics(m.metrics))
	id := o.Snapshot().ID

	m.mu.Lock()
	m.sessions[id] = &managedSession{orchestrator: o, lastAccess: time.Now()}
	m.mu.Unlock()

	m.logger.Info("booking session created", "session_id", id)
	return id, o
}

// Get returns the orchestrator for the given id, refreshing its idle
// clock. Expired sessions are evicted and reported as missing.
func (m *Manager) Get(id uuid.UUID) (*Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("booking: session %s not found", id)
	}
	if time.Since(ms.lastAccess) > m.idleTimeout {
		delete(m.sessions, id)
		return nil, fmt.Errorf("booking: session %s expired", id)
	}
	ms.lastAccess = time.Now()
	return ms.orchestrator, nil
}

// Delete removes a session.
func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep evicts all idle-expired sessions and returns how many were
// removed. Intended to run on a ticker.
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.idleTimeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, ms := range m.sessions {
		if ms.lastAccess.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("swept idle booking sessions", "removed", removed)
	}
	return removed
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
