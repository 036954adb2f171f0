package proposal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
	"github.com/wanghonghua666/AI-CALENDAR/internal/postprocess"
)

// Proposal is an extracted event awaiting user confirmation.
type Proposal struct {
	ID            string                `json:"id"`
	InteractionID string                `json:"interactionId"`
	TenantID      string                `json:"tenantId"`
	Transcript    string                `json:"transcript"`
	Event         postprocess.EventInfo `json:"event"`
	State         State                 `json:"state"`
	CreatedAt     time.Time             `json:"createdAt"`
	ExpiresAt     time.Time             `json:"expiresAt"`
	ResolvedAt    time.Time             `json:"resolvedAt,omitzero"`
}

// Config holds registry settings.
type Config struct {
	// TTL bounds how long a proposal stays pending and how long a resolved
	// one is kept for lookups.
	TTL time.Duration
	// MaxPending caps pending proposals; the oldest is expired to make room.
	MaxPending int
	// Metrics defaults to metrics.DefaultMetrics.
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// Registry holds proposals in memory. Thread-safe for concurrent access.
type Registry struct {
	mu         sync.Mutex
	items      map[string]*Proposal
	pending    []string // creation order
	ttl        time.Duration
	maxPending int
	now        func() time.Time
	metrics    *metrics.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 10000
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.DefaultMetrics
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		items:      make(map[string]*Proposal),
		ttl:        cfg.TTL,
		maxPending: cfg.MaxPending,
		now:        cfg.Now,
		metrics:    cfg.Metrics,
	}
}

// Create registers a pending proposal and returns a copy of it.
func (r *Registry) Create(interactionId, tenantId, transcript string, event postprocess.EventInfo) Proposal {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.expireOverdueLocked(now)
	for len(r.pending) >= r.maxPending {
		oldest := r.items[r.pending[0]]
		log.Warn().
			Str("proposalId", oldest.ID).
			Int("maxPending", r.maxPending).
			Msg("Pending proposal limit reached, expiring oldest")
		r.resolveLocked(oldest, StateExpired, now)
	}

	p := &Proposal{
		ID:            uuid.NewString(),
		InteractionID: interactionId,
		TenantID:      tenantId,
		Transcript:    transcript,
		Event:         event,
		State:         StatePending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(r.ttl),
	}
	r.items[p.ID] = p
	r.pending = append(r.pending, p.ID)

	r.metrics.RecordProposalTransition(StatePending.String())
	r.metrics.SetProposalsPending(len(r.pending))
	return *p
}

// Get returns a copy of the proposal. An overdue pending proposal is
// reported as expired.
func (r *Registry) Get(id string) (Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return Proposal{}, ErrNotFound
	}
	r.expireIfOverdueLocked(p, r.now())
	return *p, nil
}

// Confirm accepts a pending proposal.
func (r *Registry) Confirm(id string) (Proposal, error) {
	return r.resolve(id, StateConfirmed)
}

// Reject discards a pending proposal.
func (r *Registry) Reject(id string) (Proposal, error) {
	return r.resolve(id, StateRejected)
}

func (r *Registry) resolve(id string, to State) (Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return Proposal{}, ErrNotFound
	}
	now := r.now()
	r.expireIfOverdueLocked(p, now)
	if err := transition(p.State, to); err != nil {
		return *p, err
	}
	r.resolveLocked(p, to, now)
	return *p, nil
}

// Pending returns the number of pending proposals.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Sweep expires overdue proposals and forgets resolved ones older than the
// TTL. It returns the number of entries removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.expireOverdueLocked(now)

	removed := 0
	for id, p := range r.items {
		if p.State.IsTerminal() && now.Sub(p.ResolvedAt) > r.ttl {
			delete(r.items, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept resolved proposals")
			}
		}
	}
}

func (r *Registry) expireOverdueLocked(now time.Time) {
	// pending is in creation order and every proposal shares one TTL
	for len(r.pending) > 0 {
		p := r.items[r.pending[0]]
		if now.Before(p.ExpiresAt) {
			return
		}
		r.resolveLocked(p, StateExpired, now)
	}
}

func (r *Registry) expireIfOverdueLocked(p *Proposal, now time.Time) {
	if p.State == StatePending && !now.Before(p.ExpiresAt) {
		r.resolveLocked(p, StateExpired, now)
	}
}

// resolveLocked moves a pending proposal to a terminal state.
func (r *Registry) resolveLocked(p *Proposal, to State, now time.Time) {
	p.State = to
	p.ResolvedAt = now
	for i, id := range r.pending {
		if id == p.ID {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}

	log.Info().
		Str("proposalId", p.ID).
		Str("interactionId", p.InteractionID).
		Str("state", to.String()).
		Msg("Proposal resolved")

	r.metrics.RecordProposalTransition(to.String())
	r.metrics.SetProposalsPending(len(r.pending))
}
