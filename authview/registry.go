package authview

import (
	"sync"
	"time"
)

// DefaultIdleTTL is how long a View may go unfetched before a Registry unmounts it.
const DefaultIdleTTL = 30 * time.Minute

// A BuildFn constructs the View for a browser session the Registry has not seen.
type BuildFn func() (*View, error)

type visit struct {
	lastSeen time.Time
	view     *View
}

// A Registry maps browser sessions to mounted Views.
type Registry struct {
	ttl time.Duration
	val map[string]visit
	sync.Mutex
}

// NewRegistry constructs a Registry evicting Views idle for longer than ttl.
// Non-positive values use DefaultIdleTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}

	return &Registry{ttl: ttl, val: make(map[string]visit)}
}

// Fetch retrieves the View for id, building and mounting one with build if not seen.
// build runs without holding r, so a slow build delays only its own browser session.
// When two calls race to build for the same id, the first stored wins
// and the other View is unmounted.
//
// Each call first unmounts and drops Views idle for longer than the Registry's TTL.
func (r *Registry) Fetch(id string, build BuildFn) (*View, error) {
	if v, ok := r.touch(id); ok {
		return v, nil
	}

	view, err := build()
	if err != nil {
		return nil, err
	}
	view.Mount()

	r.Lock()
	v, ok := r.val[id]
	if !ok {
		v = visit{view: view}
	}
	v.lastSeen = time.Now().UTC()
	r.val[id] = v
	r.Unlock()

	if ok {
		view.Unmount()
	}

	return v.view, nil
}

// touch sweeps idle Views and marks the View for id, if any, as seen.
func (r *Registry) touch(id string) (*View, bool) {
	r.Lock()
	defer r.Unlock()

	now := time.Now().UTC()
	r.cleanup(now)

	v, ok := r.val[id]
	if !ok {
		return nil, false
	}

	v.lastSeen = now
	r.val[id] = v
	return v.view, true
}

// Evict unmounts and drops the View for id, if any.
func (r *Registry) Evict(id string) {
	r.Lock()
	v, ok := r.val[id]
	delete(r.val, id)
	r.Unlock()

	if ok {
		v.view.Unmount()
	}
}

// Len reports how many Views r holds.
func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()

	return len(r.val)
}

// Close unmounts and drops every View.
func (r *Registry) Close() {
	r.Lock()
	defer r.Unlock()

	for id, v := range r.val {
		v.view.Unmount()
		delete(r.val, id)
	}
}

// cleanup unmounts and drops Views not seen since now minus the TTL.
func (r *Registry) cleanup(now time.Time) {
	for id, v := range r.val {
		if now.Sub(v.lastSeen) > r.ttl {
			v.view.Unmount()
			delete(r.val, id)
		}
	}
}
