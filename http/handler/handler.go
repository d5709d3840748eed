package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authview"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/http/template"
)

// DefaultLoadWait is how long Page waits for a View's session to load
// before rendering the loading page instead.
const DefaultLoadWait = 500 * time.Millisecond

var ErrNoView = errors.New("no view")

// A CookieJar exports the cookies an auth server set.
//
// *authclient.Client implements CookieJar.
type CookieJar interface {
	Cookies() map[string]string
}

// Handler shares the initialized Responder across the authentication page's routes.
//
// Every method expects middleware.InjectView to have run first.
type Handler struct {
	*resp.Responder

	loadWait time.Duration
	parser   *req.Parser
}

// A HandlerOpt configures a Handler when constructing one with New.
type HandlerOpt func(*Handler)

// WithLoadWait sets how long Page waits for a View's session to load.
// Negative durations are ignored.
func WithLoadWait(d time.Duration) HandlerOpt {
	return func(h *Handler) {
		if d < 0 {
			return
		}

		h.loadWait = d
	}
}

// WithParser sets the *req.Parser decoding form posts.
func WithParser(p *req.Parser) HandlerOpt {
	return func(h *Handler) {
		if p == nil {
			return
		}

		h.parser = p
	}
}

// New constructs a Handler responding with d.
func New(d *resp.Responder, opts ...HandlerOpt) *Handler {
	h := &Handler{Responder: d, loadWait: DefaultLoadWait}
	for _, opt := range opts {
		opt(h)
	}

	if h.parser == nil {
		h.parser = req.NewParser()
	}

	return h
}

// Page renders the loading page, the signed in page or the form,
// according to the phase of the request's View.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	if h.loadWait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.loadWait)
		_ = v.AwaitSettled(ctx)
		cancel()
	}

	st := v.State()
	opts := []resp.Fn{resp.Layout(), resp.Tmpls(tmplFor(st.Phase)), resp.Data(st), resp.NoStore()}
	if st.User != nil {
		opts = append(opts, resp.User(st.User))
	}

	if err := h.Html(w, r, opts...); err != nil {
		h.Err(w, r, err)
	}
}

// State responds with the request's View as JSON.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	if err := h.Json(w, r, resp.Data(v.State()), resp.NoStore()); err != nil {
		h.Err(w, r, err)
	}
}

// Submit copies the posted form into the request's View and submits it.
//
// A form posted from a page showing the other mode is dropped.
// So is a form missing required fields:
// browsers enforce those before posting, so no error is shown.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	form := new(AuthForm)
	err := h.parser.ParseForm(r, form)
	switch {
	case errors.Is(err, trailhead.ErrNotValid):
		h.back(w, r, resp.Warn(session.BadInputMsg))
		return
	case err != nil:
		h.back(w, r, resp.GenericErr(err))
		return
	}

	if form.Mode != v.State().Mode {
		h.back(w, r)
		return
	}

	form.apply(v)
	err = v.Submit(r.Context())
	switch {
	case errors.Is(err, authview.ErrInFlight), errors.Is(err, authview.ErrRequired):
		h.back(w, r)
		return
	case err != nil:
		h.back(w, r, resp.GenericErr(err))
		return
	}

	if err := h.saveCookies(w, r, v); err != nil {
		h.back(w, r, resp.GenericErr(err))
		return
	}

	h.back(w, r)
}

// Mode toggles the request's View between signing in and signing up.
//
// A toggle posted from a page showing the other mode is dropped.
func (h *Handler) Mode(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	form := new(ModeForm)
	if err := h.parser.ParseForm(r, form); err != nil {
		h.back(w, r, resp.GenericErr(err))
		return
	}

	if form.Mode == "" || form.Mode == v.State().Mode {
		v.ToggleMode()
	}

	h.back(w, r)
}

// SignOut signs the request's View out.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	v.SignOut(r.Context())
	if err := h.saveCookies(w, r, v); err != nil {
		h.back(w, r, resp.GenericErr(err))
		return
	}

	h.back(w, r, resp.Flash(session.Flash{Class: session.FlashInfo, Msg: session.SignedOutMsg}))
}

// back redirects to the page after a form post.
func (h *Handler) back(w http.ResponseWriter, r *http.Request, opts ...resp.Fn) {
	if err := h.Redirect(w, r, append(opts, resp.Code(http.StatusSeeOther))...); err != nil {
		h.Err(w, r, err)
	}
}

// saveCookies persists the cookies the auth server set on v's client in the browser session,
// so a View rebuilt for the session carries them.
func (h *Handler) saveCookies(w http.ResponseWriter, r *http.Request, v *authview.View) error {
	jar, ok := v.Client().(CookieJar)
	if !ok {
		return nil
	}

	s, err := h.Session(r.Context())
	if err != nil {
		return err
	}

	return s.SetAuthCookies(w, r, jar.Cookies())
}

// view retrieves the request's View, responding with an error if there is none.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*authview.View, bool) {
	v, ok := middleware.ViewFrom(r.Context())
	if !ok {
		h.Err(w, r, fmt.Errorf("%w: nothing stored under %s", ErrNoView, trailhead.ViewKey))
		return nil, false
	}

	return v, true
}

func tmplFor(p authview.Phase) string {
	switch p {
	case authview.PhaseLoading:
		return template.LoadingTmpl
	case authview.PhaseAuthenticated:
		return template.AuthenticatedTmpl
	default:
		return template.FormTmpl
	}
}
