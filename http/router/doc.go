/*
Package router defines how requests reach the handlers of a trailhead server.

[*Router] utilizes [mux.Router] for its implementation,
and so functions as thin wrapper around that pacakge.

A [Router] leverages a standardized data model - a [Route] -
when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
any middlewares added to the Route are called in the order they appear.

It is often the case that many routes for a web server share identical middleware stacks,
which aid in directing, redirecting, or adding contextual information to a request.
Thus, a [Router] provides conveniences for making a single call to register many logically associated Routes.

A Router expects two such groups of routes:
those only a signed out user may reach, like submitting the sign in form,
and those only a signed in user may reach, like signing out.
The UnauthedRoutes and AuthedRoutes methods ensure routes are registered in the appropriate way, consequently.
*/
package router
