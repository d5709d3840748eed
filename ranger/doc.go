/*
Package ranger initializes and manages a trailhead app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type.
A [Ranger] ought to be constructed with [New],
which reads a [Config] from environment variables unless [WithConfig] replaces it.

[New] registers the authentication page:

  - GET /: the loading page, the form or the signed in page
  - GET /state: the same, as JSON
  - OPTIONS /state: the CORS preflight for GET /state
  - POST /submit: signs in or signs up with the posted form
  - POST /mode: toggles between signing in and signing up
  - POST /sign-out: signs out

Every browser session is bound to an [*authview.View],
whose [*authclient.Client] calls the auth server at AUTH_SERVER_URL.

[*Ranger.Guide] begins a trailhead app's web server.
By default, [*Ranger.Guide] listens on [DefaultHost]:[DefaultPort] (localhost:8080),
assuming either a reverse proxy proxies requests
or only browsers make direct requests to the trailhead web server.

Stop that web server with [*Ranger.Shutdown],
cancel the context.Context passed to [WithContext],
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures a trailhead app through environment variables
and by passing [RangerOption] to [New].
For environment variables, required values can be discovered by inspecting the errors [New] returns.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - AUTH_ORIGIN: the Origin header sent to the auth server; default: the scheme and host of BASE_URL
  - AUTH_SERVER_URL: the base URL of the auth server's API; default: http://localhost:3000/api/auth
  - AUTH_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for calls to the auth server; default: 10s
  - BASE_URL: the base URL the application runs on; replaces HOST & PORT
  - CONTACT_US_EMAIL: the email address end users can contact; default: hello@example.com
  - ENVIRONMENT: the environment the application is running in; cf. [trailhead.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - MAINTENANCE_MODE: whether every request is answered with the maintenance page; default: false
  - PORT: the port the application should listen on; default: :8080
  - RATE_BURST: the burst of form posts allowed from one IP address; default: [middleware.DefaultBurst]
  - RATE_LIMIT: the form posts allowed every second from one IP address; default: [middleware.DefaultRate]
  - REDIS_PASSWORD: the password for authenticating a connection to Redis
  - REDIS_URL: a redis:// URL or host:port; when set, sessions and idempotent responses are kept in Redis
  - SENTRY_DSN: when set, errors are reported to Sentry
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 10s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - SESSION_MAX_AGE: the seconds a browser session lasts; default: 604800
  - SESSION_NAME: the name of the session cookie; default: trailhead
  - TEMPLATE_DIR: a directory whose templates, e.g. tmpl/form.tmpl, replace the embedded pages; default: the working directory
  - VIEW_IDLE_TTL: how long an unused View is kept - as understood by [time.ParseDuration]; default: 30m
  - VIEW_LOAD_WAIT: how long GET / waits for a View's session to load - as understood by [time.ParseDuration]; default: 500ms
*/
package ranger
