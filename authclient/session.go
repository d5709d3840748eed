package authclient

import (
	"context"
	"sync"
	"sync/atomic"
)

// A FetchFunc retrieves the current session, nil when there is none.
type FetchFunc func(ctx context.Context) (*SessionData, error)

// SessionState is a snapshot of a SessionStore.
type SessionState struct {
	// Pending is true until the first fetch settles.
	Pending bool

	// Refetching is true while a fetch after the first is in flight.
	Refetching bool

	// Data is the current session, nil when signed out.
	Data *SessionData

	// Error is the failure of the most recent fetch.
	Error error
}

// User returns the signed in User, if any.
func (s SessionState) User() *User {
	if s.Data == nil {
		return nil
	}

	u := s.Data.User
	return &u
}

// A SessionStore holds the latest SessionState and pushes every change
// to its subscribers, synchronously and in order.
type SessionStore struct {
	fetch FetchFunc

	// refreshing serializes fetches.
	refreshing sync.Mutex

	mu      sync.Mutex
	state   SessionState
	version int
	subs    map[int]*subscriber
	next    int
	settled chan struct{}
	once    sync.Once
}

// A subscriber receives each SessionState version at most once, in order.
type subscriber struct {
	fn func(SessionState)

	// mu is held while fn runs.
	mu      sync.Mutex
	seen    int
	stopped atomic.Bool
}

// deliver calls fn with state unless a version at or after it was already delivered.
func (sub *subscriber) deliver(state SessionState, version int) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.stopped.Load() || sub.seen >= version {
		return
	}

	sub.seen = version
	sub.fn(state)
}

// NewSessionStore constructs a pending SessionStore fetching sessions with fetch.
func NewSessionStore(fetch FetchFunc) *SessionStore {
	return &SessionStore{
		fetch:   fetch,
		state:   SessionState{Pending: true},
		version: 1,
		subs:    make(map[int]*subscriber),
		settled: make(chan struct{}),
	}
}

// Get returns the current SessionState.
func (s *SessionStore) Get() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Settled is closed once the first fetch completes, successfully or not.
func (s *SessionStore) Settled() <-chan struct{} { return s.settled }

// Subscribe calls fn with the current SessionState and then with every change.
// Subscribe does not wait on a fetch in flight.
// Calling the returned func stops delivery; calling it more than once is a noop.
func (s *SessionStore) Subscribe(fn func(SessionState)) func() {
	sub := &subscriber{fn: fn}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = sub
	current, version := s.state, s.version

	// a publish racing this call waits on sub.mu, so current arrives first
	sub.mu.Lock()
	s.mu.Unlock()

	sub.seen = version
	fn(current)
	sub.mu.Unlock()

	return func() {
		sub.stopped.Store(true)

		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subs, id)
	}
}

// Refresh fetches the session and publishes the result.
//
// A failed fetch clears the session and records the error in SessionState.Error,
// which is also returned.
func (s *SessionStore) Refresh(ctx context.Context) error {
	s.refreshing.Lock()
	defer s.refreshing.Unlock()

	s.mu.Lock()
	if !s.state.Pending {
		s.state.Refetching = true
		s.publish()
	}
	s.mu.Unlock()

	data, err := s.fetch(ctx)

	s.mu.Lock()
	s.state = SessionState{Data: data, Error: err}
	s.publish()
	s.mu.Unlock()

	s.once.Do(func() { close(s.settled) })

	return err
}

// publish bumps the version and hands the current state to every subscriber,
// skipping those that already saw it on subscribing.
// s.mu must be held; it is released while subscribers run.
func (s *SessionStore) publish() {
	s.version++
	state, version := s.state, s.version

	subs := make([]*subscriber, 0, len(s.subs))
	for i := 0; i < s.next; i++ {
		if sub, ok := s.subs[i]; ok {
			subs = append(subs, sub)
		}
	}

	s.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(state, version)
	}
	s.mu.Lock()
}
