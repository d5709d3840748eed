/*
Package handler serves the authentication page.

Each method of [Handler] is an [net/http.HandlerFunc] operating on the [*authview.View]
bound to the browser session by [middleware.InjectView]:

	GET  /          Page
	GET  /state     State
	POST /submit    Submit
	POST /mode      Mode
	POST /sign-out  SignOut

Form posts always redirect back to the page with a 303 status code,
so the page a browser shows is always rendered from the View's current state.
After an attempt, the cookies the auth server set are saved in the browser session.

Register the methods with a [router.Router]:

	h := handler.New(responder)
	r.HandleRoutes([]router.Route{
		{Path: "/", Method: http.MethodGet, Handler: h.Page},
		{Path: "/submit", Method: http.MethodPost, Handler: h.Submit},
	}, middleware.InjectView(responder, registry, build))
*/
package handler
