package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/logger"
)

// A Route maps a path and HTTP method to an [http.HandlerFunc].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
//
// A Route without a Method matches every method.
type Route struct {
	Path        string
	Method      string
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
}

// Router routes requests to the handlers of a trailhead app.
type Router struct {
	d             *resp.Responder
	env           trailhead.Environment
	everyReqStack []middleware.Adapter
	log           logger.Logger
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
//
// d handles requests AuthedRoutes and UnauthedRoutes turn away.
// log reports panics recovered from handlers.
func New(env trailhead.Environment, log logger.Logger, d *resp.Responder) *Router {
	if log == nil {
		log = logger.New()
	}

	return &Router{d: d, env: env, log: log, r: mux.NewRouter()}
}

// AuthedRoutes registers the set of Routes as those requiring a signed in user.
// AuthedRoutes applies the given middlewares before performing that check,
// using middleware.RequireAuthed.
func (r *Router) AuthedRoutes(routes []Route, middlewares ...middleware.Adapter) {
	r.HandleRoutes(routes, append(clone(middlewares), middleware.RequireAuthed(r.d))...)
}

// CatchAll sets up a handler for all routes to funnel to for e.g. maintenance mode.
func (r *Router) CatchAll(handler http.HandlerFunc) {
	r.r.PathPrefix("/").Handler(
		middleware.Chain(
			middleware.ReportPanic(r.env, r.log)(handler),
			r.everyReqStack...,
		),
	)
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.HandlerFunc] as the default function
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.HandlerFunc) {
	r.r.NotFoundHandler = middleware.Chain(
		middleware.ReportPanic(r.env, r.log)(handler),
		r.everyReqStack...,
	)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := append(clone(r.everyReqStack), middlewares...)
		mws = append(mws, route.Middlewares...)
		handler := middleware.Chain(route.Handler, mws...)

		// NOTE: ReportPanic wraps everything so panics in middlewares are recovered too
		rt := r.r.Handle(route.Path, middleware.ReportPanic(r.env, r.log)(handler))
		if route.Method != "" {
			rt.Methods(route.Method)
		}
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// SubrouterHost constructs a [Router] that handles requests sent to host.
func (r *Router) SubrouterHost(host string) *Router {
	return &Router{
		d:             r.d,
		env:           r.env,
		everyReqStack: clone(r.everyReqStack),
		log:           r.log,
		r:             r.r.Host(host).Subrouter(),
	}
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/auth") handles requests to endpoints like /auth/submit
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		d:             r.d,
		env:           r.env,
		everyReqStack: clone(r.everyReqStack),
		log:           r.log,
		r:             r.r.PathPrefix(prefix).Subrouter(),
	}
}

// UnauthedRoutes registers the set of Routes as those requiring no signed in user.
// It applies the given middlewares before performing that check.
func (r *Router) UnauthedRoutes(routes []Route, middlewares ...middleware.Adapter) {
	r.HandleRoutes(routes, append(clone(middlewares), middleware.RequireUnauthed(r.d))...)
}

func clone(mws []middleware.Adapter) []middleware.Adapter {
	return append(make([]middleware.Adapter, 0, len(mws)), mws...)
}
