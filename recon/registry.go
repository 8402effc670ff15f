package recon

import (
	"context"
	"sync"

	"meet-registration-portal/gateway"
	"meet-registration-portal/rules"
	"meet-registration-portal/store"
)

// Registry hands out one engine per team, starting each lazily on first
// use. Engines live for the process lifetime; per-team state (cache, queue)
// already survives restarts through the Store.
type Registry struct {
	gw    gateway.Client
	local *store.Store
	rules *rules.Rules

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewRegistry(gw gateway.Client, local *store.Store, r *rules.Rules) *Registry {
	return &Registry{
		gw:      gw,
		local:   local,
		rules:   r,
		engines: make(map[string]*Engine),
	}
}

// ForTeam returns the team's engine, creating and starting it on demand.
func (r *Registry) ForTeam(ctx context.Context, teamID string) *Engine {
	r.mu.Lock()
	e, ok := r.engines[teamID]
	if !ok {
		e = NewEngine(teamID, r.gw, r.local, r.rules)
		r.engines[teamID] = e
	}
	r.mu.Unlock()
	if !ok {
		e.Start(ctx)
	}
	return e
}

// Engines snapshots the currently running engines (for the flush worker).
func (r *Registry) Engines() []*Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e)
	}
	return out
}

// StopAll detaches every engine's change feed.
func (r *Registry) StopAll() {
	for _, e := range r.Engines() {
		e.Stop()
	}
}
