package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authview"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
)

// A ViewBuilder constructs the *authview.View for a browser session,
// restoring the auth server's cookies previously saved in it.
type ViewBuilder func(cookies map[string]string) (*authview.View, error)

// InjectView binds the browser session stored in *http.Request.Context under trailhead.SessionKey
// to an *authview.View kept in reg, building one with build on first sight.
//
// Each GET resets the browser session's expiry, so sessions end after a spell of not visiting.
//
// The View is stored under trailhead.ViewKey.
// Once the View observes a signed in user, the *authclient.User is stored under trailhead.CurrentUserKey.
//
// A *resp.Responder is needed to handle cases a View cannot be retrieved.
// InjectView checks whether the "Accept" MIME type is "application/json"
// and writes a status code if so.
// Otherwise, it renders the Responder's error page.
//
// If any argument is nil, NoopAdapter returns and this middleware does nothing.
func InjectView(d *resp.Responder, reg *authview.Registry, build ViewBuilder) Adapter {
	if d == nil || reg == nil || build == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := d.Session(r.Context())
			if err != nil {
				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			id, err := s.ViewID(w, r)
			if err != nil {
				if nested := s.Delete(w, r); nested != nil {
					err = fmt.Errorf("%w: %s", err, nested)
				}

				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			if r.Method == http.MethodGet {
				if err := s.ResetExpiry(w, r); err != nil {
					handleErr(w, r, http.StatusInternalServerError, d, fmt.Errorf("can't reset session expiry: %w", err))
					return
				}
			}

			v, err := reg.Fetch(id, func() (*authview.View, error) { return build(cookies(s)) })
			if err != nil {
				handleErr(w, r, http.StatusBadGateway, d, fmt.Errorf("can't build view %s: %w", id, err))
				return
			}

			w.Header().Add("Cache-Control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), trailhead.ViewKey, v)
			if u := v.State().User; u != nil {
				ctx = context.WithValue(ctx, trailhead.CurrentUserKey, u)
			}

			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// cookies copies the auth server's cookies out of s.
func cookies(s session.ViewSessionable) map[string]string {
	src := s.AuthCookies()
	if len(src) == 0 {
		return nil
	}

	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

// ViewFrom retrieves the *authview.View InjectView stored in ctx.
func ViewFrom(ctx context.Context) (*authview.View, bool) {
	v, ok := ctx.Value(trailhead.ViewKey).(*authview.View)
	return v, ok && v != nil
}

// handleErr helps error paths by writing responses reflecting the
// "Accept" type of the *http.Request.
func handleErr(w http.ResponseWriter, r *http.Request, code int, d *resp.Responder, err error) {
	if acceptsJson(r.Header) {
		_ = d.Json(w, r, resp.Err(err), resp.Code(code))
		return
	}

	d.Err(w, r, err)
}

// acceptsJson asserts whether the request asks for a JSON response.
func acceptsJson(header http.Header) bool {
	for _, v := range header.Values("Accept") {
		if strings.Contains(v, "application/json") {
			return true
		}
	}

	return false
}
