package ranger

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/http/template"
	"github.com/xy-planning-network/trailhead/logger"
)

// defaultLogger constructs the logger.Logger used throughout the app.
//
// When SENTRY_DSN is set, errors are also reported to Sentry.
func defaultLogger(cfg Config) logger.Logger {
	return logger.New(logger.WithEnv(cfg.Env.String()), logger.WithLevel(cfg.LogLevel))
}

// defaultParser constructs a template.Parser to be used
// when responding to HTTP requests with [*resp.Responder.Html].
//
// Templates in TEMPLATE_DIR replace the embedded pages of the same name.
//
// defaultParser makes available these functions in an HTML template:
//
//   - "env"
//   - "isDevelopment"
//   - "isProduction"
//   - "nonce"
//   - "rootUrl"
func defaultParser(cfg Config) template.Parser {
	return template.NewParser(
		template.WithDir(cfg.TemplateDir),
		template.WithFn(template.Env(cfg.Env)),
		template.WithFn("isDevelopment", cfg.Env.IsDevelopment),
		template.WithFn("isProduction", cfg.Env.IsProduction),
	)
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(cfg Config, l logger.Logger, p template.Parser) *resp.Responder {
	return resp.NewResponder(
		resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, cfg.ContactUs)),
		resp.WithErrTemplate(template.ErrTmpl),
		resp.WithLayoutTemplate(template.LayoutTmpl),
		resp.WithLogger(l),
		resp.WithParser(p),
		resp.WithRootUrl(cfg.BaseURL.String()),
	)
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// Sessions are kept in Redis when REDIS_URL is set, otherwise in cookies.
// SESSION_AUTH_KEY and SESSION_ENCRYPTION_KEY must be valid hex encoded values; cf. [encoding/hex].
func defaultSessionStore(cfg Config) (session.SessionStorer, error) {
	sc := session.Config{
		AuthKey:     cfg.SessionAuthKey,
		EncryptKey:  cfg.SessionEncryptKey,
		Env:         cfg.Env,
		SessionName: cfg.SessionName,
	}

	args := []session.ServiceOpt{session.WithMaxAge(cfg.SessionMaxAge)}
	if cfg.RedisURL != "" {
		opts, err := redisOptions(cfg)
		if err != nil {
			return nil, err
		}

		args = append(args, session.WithRedis(opts.Addr, opts.Password))
	} else {
		args = append(args, session.WithCookie())
	}

	return session.NewStoreService(sc, args...)
}

// defaultIdempotencyCache constructs the cache backing middleware.Idempotent.
//
// Responses are kept in Redis when REDIS_URL is set, otherwise in memory.
func defaultIdempotencyCache(ctx context.Context, cfg Config) (middleware.IdempotencyCacher, func() error, error) {
	if cfg.RedisURL == "" {
		return middleware.NewIdemResMap(), nil, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	c := middleware.NewRedisCache(opts, middleware.DefaultIdempotencyTTL)
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("%w: failed reaching Redis: %s", trailhead.ErrBadConfig, err)
	}

	return c, c.Close, nil
}

// redisOptions parses REDIS_URL, accepting either a redis:// URL or a bare host:port.
// REDIS_PASSWORD, when set, overrides any password in the URL.
func redisOptions(cfg Config) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.RedisURL}
	if strings.Contains(cfg.RedisURL, "://") {
		var err error
		opts, err = redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", trailhead.ErrBadConfig, RedisURLEnvVar, err)
		}
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}

	return opts, nil
}

// defaultAuthHTTPClient constructs the *http.Client every authclient.Client shares.
func defaultAuthHTTPClient(cfg Config) *http.Client {
	return &http.Client{Timeout: cfg.AuthTimeout}
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context, cfg Config) *http.Server {
	srv := &http.Server{
		Addr:         cfg.Addr,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// MaintModeHandler responds to every request with 503 and a Retry-After header,
// rendering template.MaintenanceTmpl for browsers if p can parse it.
func MaintModeHandler(p template.Parser, l logger.Logger, contact string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "600")

		tmpl, err := p.Parse(template.MaintenanceTmpl)
		if err != nil {
			l.Debug("no maintenance template", &logger.LogContext{Error: err})
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := tmpl.Execute(w, map[string]any{"Contact": contact}); err != nil {
			l.Error("failed rendering maintenance template", &logger.LogContext{Request: r, Error: err})
		}
	})
}
