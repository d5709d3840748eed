package middleware

import (
	"net/http"

	"github.com/xy-planning-network/trailhead/authview"
	"github.com/xy-planning-network/trailhead/http/resp"
)

// RequireUnauthed returns a middleware.Adapter that requires the *authview.View
// stored by InjectView not show a signed in user.
// When it does not, RequireUnauthed hands off to the next part of the middleware chain.
//
// When the user is signed in, and the request's "Accept" header has "application/json" in it,
// RequireUnauthed writes 400 to the client.
// If the request does not have that value in it's header,
// RequireUnauthed redirects to the Responder's root URL.
//
// If d is nil, NoopAdapter returns and this middleware does nothing.
func RequireUnauthed(d *resp.Responder) Adapter {
	if d == nil {
		return NoopAdapter
	}

	return requirePhase(d, http.StatusBadRequest, func(p authview.Phase) bool {
		return p != authview.PhaseAuthenticated
	})
}

// RequireAuthed returns a middleware.Adapter that requires the *authview.View
// stored by InjectView show a signed in user.
// When it does, RequireAuthed hands off to the next part of the middleware chain.
//
// When the user is not signed in, and the request's "Accept" header has "application/json" in it,
// RequireAuthed writes 401 to the client.
// If the request does not have that value in it's header,
// RequireAuthed redirects to the Responder's root URL.
//
// If d is nil, NoopAdapter returns and this middleware does nothing.
func RequireAuthed(d *resp.Responder) Adapter {
	if d == nil {
		return NoopAdapter
	}

	return requirePhase(d, http.StatusUnauthorized, func(p authview.Phase) bool {
		return p == authview.PhaseAuthenticated
	})
}

func requirePhase(d *resp.Responder, code int, ok func(authview.Phase) bool) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, found := ViewFrom(r.Context())
			if found && ok(v.State().Phase) {
				handler.ServeHTTP(w, r)
				return
			}

			if acceptsJson(r.Header) {
				w.WriteHeader(code)
				return
			}

			if err := d.Redirect(w, r, resp.Code(http.StatusSeeOther)); err != nil {
				d.Err(w, r, err)
			}
		})
	}
}
