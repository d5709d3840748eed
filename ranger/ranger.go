package ranger

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// TODO(dlk): configurable env files
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/time/rate"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authclient"
	"github.com/xy-planning-network/trailhead/authview"
	"github.com/xy-planning-network/trailhead/http/handler"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/router"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/http/template"
	"github.com/xy-planning-network/trailhead/logger"
)

// A Ranger manages and exposes all components of a trailhead app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	cfg      Config
	ctx      context.Context
	cancel   context.CancelFunc
	closers  []func() error
	hc       *http.Client
	idem     middleware.IdempotencyCacher
	l        logger.Logger
	p        template.Parser
	reg      *authview.Registry
	sessions session.SessionStorer
	srv      *http.Server
	visitors *middleware.Visitors
}

// New constructs a Ranger from the provided options.
// Options supplied to New overwrite default configurations,
// which are read from environment variables; cf. NewConfig.
//
// New registers every route of the authentication page.
func New(opts ...RangerOption) (*Ranger, error) {
	r := &Ranger{cfg: NewConfig()}
	followups := make([]OptFollowup, 0)

	// NOTE(dlk): calling an option configures the *Ranger under construction.
	// Some options require data from other options or from defaults.
	// They return an OptFollowup to be called after the defaults are set.
	for _, opt := range opts {
		fn, err := opt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if err := r.setDefaults(); err != nil {
		r.close()
		return nil, err
	}

	r.routes()

	for _, fn := range followups {
		if err := fn(); err != nil {
			r.close()
			return nil, fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}
	}

	return r, nil
}

// setDefaults fills every component no RangerOption set.
func (r *Ranger) setDefaults() error {
	if err := r.cfg.validate(); err != nil {
		return err
	}

	if r.ctx == nil {
		r.ctx = context.Background()
	}
	r.ctx, r.cancel = context.WithCancel(r.ctx)

	if r.l == nil {
		r.l = defaultLogger(r.cfg)
	}
	r.l.Debug(fmt.Sprintf("configuring %s app at %s", r.cfg.Env, r.cfg.BaseURL), nil)

	if r.p == nil {
		r.p = defaultParser(r.cfg)
	}

	if r.sessions == nil {
		store, err := defaultSessionStore(r.cfg)
		if err != nil {
			return err
		}

		r.sessions = store
	}

	if r.idem == nil {
		c, closer, err := defaultIdempotencyCache(r.ctx, r.cfg)
		if err != nil {
			return err
		}

		r.idem = c
		if closer != nil {
			r.closers = append(r.closers, closer)
		}
	}

	if r.hc == nil {
		r.hc = defaultAuthHTTPClient(r.cfg)
	}

	if r.srv == nil {
		r.srv = defaultServer(r.ctx, r.cfg)
	}

	r.Responder = defaultResponder(r.cfg, r.l, r.p)
	r.Router = router.New(r.cfg.Env, r.l, r.Responder)
	r.reg = authview.NewRegistry(r.cfg.ViewIdleTTL)
	r.visitors = middleware.NewVisitors(rate.Limit(r.cfg.RateLimit), r.cfg.RateBurst)
	r.srv.Handler = r.Router

	return nil
}

// routes registers the authentication page on the Ranger's router.
//
// In maintenance mode, every request is answered by MaintModeHandler instead.
func (r *Ranger) routes() {
	r.Router.OnEveryRequest(
		middleware.ForceHTTPS(r.cfg.Env),
		middleware.RequestID(trailhead.RequestIDKey),
		middleware.InjectIPAddress(),
		middleware.LogRequest(r.l),
	)

	if r.cfg.MaintenanceMode {
		r.l.Warn("maintenance mode is on", nil)
		r.Router.CatchAll(MaintModeHandler(r.p, r.l, r.cfg.ContactUs).ServeHTTP)
		return
	}

	h := handler.New(r.Responder, handler.WithLoadWait(r.cfg.ViewLoadWait))
	sess := middleware.InjectSession(r.sessions, trailhead.SessionKey)
	view := middleware.InjectView(r.Responder, r.reg, r.buildView)
	cors := middleware.CORS(origin(r.cfg.BaseURL))
	limit := middleware.RateLimit(r.visitors)

	r.Router.HandleRoutes(
		[]router.Route{
			{Path: "/", Method: http.MethodGet, Handler: h.Page},
			{Path: "/state", Method: http.MethodGet, Handler: h.State, Middlewares: []middleware.Adapter{cors}},
		},
		sess,
		view,
	)

	// preflights carry no cookies, so no session or View is bound to them
	r.Router.Handle(router.Route{
		Path:        "/state",
		Method:      http.MethodOptions,
		Handler:     func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
		Middlewares: []middleware.Adapter{cors},
	})

	r.Router.UnauthedRoutes(
		[]router.Route{
			{
				Path:        "/submit",
				Method:      http.MethodPost,
				Handler:     h.Submit,
				Middlewares: []middleware.Adapter{middleware.Idempotent(r.idem, sha256.New())},
			},
			{Path: "/mode", Method: http.MethodPost, Handler: h.Mode},
		},
		limit,
		sess,
		view,
	)

	r.Router.AuthedRoutes(
		[]router.Route{{Path: "/sign-out", Method: http.MethodPost, Handler: h.SignOut}},
		limit,
		sess,
		view,
	)

	r.Router.HandleNotFound(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet {
			_ = r.Redirect(w, req, resp.Code(http.StatusSeeOther))
			return
		}

		w.WriteHeader(http.StatusNotFound)
	})
}

// buildView constructs the View for a browser session,
// backed by an *authclient.Client carrying the auth server's cookies saved in the session.
//
// The Client's session starts loading in the background.
func (r *Ranger) buildView(cookies map[string]string) (*authview.View, error) {
	c, err := authclient.New(
		r.cfg.AuthServerURL,
		authclient.WithCookies(cookies),
		authclient.WithHTTPClient(r.hc),
		authclient.WithLogger(r.l),
		authclient.WithOrigin(r.cfg.AuthOrigin),
	)
	if err != nil {
		return nil, err
	}

	caller := logger.CurrentCaller()
	go func() {
		ctx, cancel := context.WithTimeout(r.ctx, r.cfg.AuthTimeout)
		defer cancel()

		if err := c.Session().Refresh(ctx); err != nil {
			r.l.Warn("failed loading session", &logger.LogContext{Caller: caller, Error: err})
		}
	}()

	return authview.New(c, authview.WithLogger(r.l)), nil
}

func (r *Ranger) EmitConfig() Config                      { return r.cfg }
func (r *Ranger) EmitLogger() logger.Logger               { return r.l }
func (r *Ranger) EmitRegistry() *authview.Registry        { return r.reg }
func (r *Ranger) EmitSessionStore() session.SessionStorer { return r.sessions }

// Guide begins the web server.
//
// These, and (*Ranger).Shutdown, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (r *Ranger) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	errs := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.srv.Addr), nil)
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("could not listen: %w", err)
			r.cancel()
		}
	}()

	<-r.ctx.Done()
	if err := r.Shutdown(); err != nil {
		return err
	}

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// Shutdown shutdowns the web server, then unmounts every View
// and flushes errors queued for Sentry.
func (r *Ranger) Shutdown() error {
	r.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	err := r.srv.Shutdown(shutdownCtx)
	r.reg.Close()
	r.close()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	logger.Flush(2 * time.Second)
	return nil
}

// close releases the connections defaults opened.
func (r *Ranger) close() {
	for _, fn := range r.closers {
		if err := fn(); err != nil && r.l != nil {
			r.l.Warn("failed closing", &logger.LogContext{Error: err})
		}
	}

	r.closers = nil
}
