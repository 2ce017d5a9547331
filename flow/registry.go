// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps the live flows of this process, keyed by flow id. When
// Options.IdleTTL is set, flows that nobody has looked up for that long are
// dropped by Get and Sweep.
type Registry struct {
	source  Source
	opts    Options
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	flows map[string]*liveFlow
}

type liveFlow struct {
	c        *Controller
	lastSeen time.Time
}

func NewRegistry(source Source, opts Options) *Registry {
	return &Registry{
		source:  source,
		opts:    opts,
		idleTTL: opts.IdleTTL,
		now:     time.Now,
		flows:   make(map[string]*liveFlow),
	}
}

// Start creates a flow for userID and runs its startup. Flows whose
// identity fetch fails are not kept; the controller is still returned so
// the caller can render its exit screen. A failed first snapshot keeps the
// flow (it shows the error screen and can be refreshed).
func (r *Registry) Start(ctx context.Context, userID string) (*Controller, error) {
	c := NewController(uuid.NewString(), userID, r.source, r.opts)

	err := c.Start(ctx)
	if errors.Is(err, ErrIdentity) {
		c.Close()
		return c, err
	}

	r.mu.Lock()
	r.flows[c.ID()] = &liveFlow{c: c, lastSeen: r.now()}
	r.mu.Unlock()

	return c, err
}

// Get returns a live flow and marks it as seen.
func (r *Registry) Get(flowID string) (*Controller, error) {
	r.mu.Lock()
	f, ok := r.flows[flowID]
	if !ok {
		r.mu.Unlock()
		return nil, ErrFlowNotFound
	}
	now := r.now()
	if r.expired(f, now) {
		delete(r.flows, flowID)
		r.mu.Unlock()
		f.c.Close()
		return nil, ErrFlowNotFound
	}
	f.lastSeen = now
	r.mu.Unlock()

	return f.c, nil
}

// End removes a flow and stops its background work.
func (r *Registry) End(flowID string) error {
	r.mu.Lock()
	f, ok := r.flows[flowID]
	delete(r.flows, flowID)
	r.mu.Unlock()

	if !ok {
		return ErrFlowNotFound
	}
	f.c.Close()
	return nil
}

// Sweep drops every idle flow and returns how many it removed.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	now := r.now()
	var idle []*Controller
	for id, f := range r.flows {
		if r.expired(f, now) {
			idle = append(idle, f.c)
			delete(r.flows, id)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		c.Close()
		c.log.Info("idle flow dropped", "idle_ttl", r.idleTTL)
	}
	return len(idle)
}

// Janitor sweeps idle flows until ctx is done. It returns at once when no
// IdleTTL is configured.
func (r *Registry) Janitor(ctx context.Context) {
	if r.idleTTL <= 0 {
		return
	}

	ticker := time.NewTicker(max(r.idleTTL/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) expired(f *liveFlow, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(f.lastSeen) > r.idleTTL
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// CloseAll ends every flow. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*liveFlow)
	r.mu.Unlock()

	for _, f := range flows {
		f.c.Close()
	}
}
