package ranger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/http/template"
	"github.com/xy-planning-network/trailhead/logger"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
//
// WithConfig is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithServer is an example of the second.
// The *http.Server is only handed the Ranger's router once the router is built.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithAuthHTTPClient sets the *http.Client calls to the auth server are made with.
func WithAuthHTTPClient(hc *http.Client) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if hc == nil {
			return nil, nil
		}

		rng.hc = hc
		return func() error {
			rng.l.Debug(fmt.Sprintf("using auth http client %T", hc.Transport), nil)
			return nil
		}, nil
	}
}

// WithConfig replaces the Config read from environment variables.
func WithConfig(cfg Config) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.cfg = cfg
		return nil, nil
	}
}

// WithContext exposes the provided context.Context to the trailhead app.
// Canceling it stops Guide.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctx = ctx
		return nil, nil
	}
}

// WithIdempotencyCache sets the cache idempotent form posts are checked against.
func WithIdempotencyCache(c middleware.IdempotencyCacher) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.idem = c
		return func() error {
			rng.l.Debug(fmt.Sprintf("using idempotency cache %T", c), nil)
			return nil
		}, nil
	}
}

// WithLogger exposes the provided logger.Logger to the trailhead app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		return nil, nil
	}
}

// WithParser sets the template.Parser HTML responses are rendered with.
func WithParser(p template.Parser) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.p = p
		return nil, nil
	}
}

// WithServer exposes the *http.Server to the trailhead app.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.srv = s
		return func() error {
			rng.srv.Handler = rng.Router
			rng.l.Debug(fmt.Sprintf("using server at %s", s.Addr), nil)
			return nil
		}, nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the trailhead app.
func WithSessionStore(store session.SessionStorer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.sessions = store
		return func() error {
			rng.l.Debug(fmt.Sprintf("using session store %T", store), nil)
			return nil
		}, nil
	}
}
