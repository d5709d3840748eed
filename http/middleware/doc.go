/*
The middleware package defines what a middleware is in trailhead and the middlewares the auth page runs behind.

The available middlewares are:
- CORS
- ForceHTTPS
- Idempotent
- InjectIPAddress
- InjectSession
- InjectView
- LogRequest
- RateLimit
- ReportPanic
- RequestID
- RequireAuthed
- RequireUnauthed

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors(middleware.DefaultRate, middleware.DefaultBurst)
	adpts := []middleware.Adapter{
		middleware.ReportPanic(env, log),
		middleware.InjectIPAddress(),
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.RequestID(trailhead.RequestIDKey),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore, trailhead.SessionKey),
		middleware.InjectView(responder, registry, build),
	}
*/
package middleware
