package ranger

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authclient"
	"github.com/xy-planning-network/trailhead/authview"
	"github.com/xy-planning-network/trailhead/http/handler"
	"github.com/xy-planning-network/trailhead/logger"
)

const (
	// App defaults
	BaseURLEnvVar      = "BASE_URL"
	ContactUsEnvVar    = "CONTACT_US_EMAIL"
	environmentEnvVar  = "ENVIRONMENT"
	maintModeEnvVar    = "MAINTENANCE_MODE"
	defaultContactUs   = "hello@example.com"
	logLevelEnvVar     = "LOG_LEVEL"
	defaultLogLevelStr = "INFO"
	templateDirEnvVar  = "TEMPLATE_DIR"

	// Auth server defaults
	AuthServerURLEnvVar = "AUTH_SERVER_URL"
	defaultAuthServer   = "http://localhost:3000" + authclient.DefaultBasePath
	authOriginEnvVar    = "AUTH_ORIGIN"
	authTimeoutEnvVar   = "AUTH_TIMEOUT"

	// View defaults
	viewIdleTTLEnvVar  = "VIEW_IDLE_TTL"
	viewLoadWaitEnvVar = "VIEW_LOAD_WAIT"

	// Rate limit defaults
	rateLimitEnvVar = "RATE_LIMIT"
	rateBurstEnvVar = "RATE_BURST"

	// Redis defaults
	RedisURLEnvVar      = "REDIS_URL"
	redisPasswordEnvVar = "REDIS_PASSWORD"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":8080"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 10 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionMaxAgeEnvVar     = "SESSION_MAX_AGE"
	sessionNameEnvVar       = "SESSION_NAME"
	defaultSessionName      = "trailhead"
	defaultSessionMaxAge    = 3600 * 24 * 7
)

// A Config holds the settings of a trailhead app.
// NewConfig reads them from environment variables.
type Config struct {
	Env             trailhead.Environment
	BaseURL         *url.URL
	ContactUs       string
	LogLevel        logger.LogLevel
	MaintenanceMode bool

	// A directory whose templates replace the embedded pages of the same name.
	TemplateDir string

	// The better-auth style API the app signs users in with.
	AuthServerURL string

	// The Origin header sent to the auth server;
	// defaults to the scheme and host of BaseURL.
	AuthOrigin  string
	AuthTimeout time.Duration

	RateLimit float64
	RateBurst int

	RedisURL      string
	RedisPassword string

	Addr         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	SessionName       string
	SessionAuthKey    string
	SessionEncryptKey string
	SessionMaxAge     int

	ViewIdleTTL  time.Duration
	ViewLoadWait time.Duration
}

// NewConfig reads a Config from environment variables, applying defaults where unset.
// Confer the package documentation for the list.
func NewConfig() Config {
	cfg := Config{
		Env:               trailhead.EnvVarOrEnv(environmentEnvVar, trailhead.Development),
		ContactUs:         trailhead.EnvVarOrString(ContactUsEnvVar, defaultContactUs),
		LogLevel:          logger.NewLogLevel(trailhead.EnvVarOrString(logLevelEnvVar, defaultLogLevelStr)),
		MaintenanceMode:   trailhead.EnvVarOrBool(maintModeEnvVar, false),
		TemplateDir:       os.Getenv(templateDirEnvVar),
		AuthServerURL:     trailhead.EnvVarOrString(AuthServerURLEnvVar, defaultAuthServer),
		AuthOrigin:        os.Getenv(authOriginEnvVar),
		AuthTimeout:       trailhead.EnvVarOrDuration(authTimeoutEnvVar, authclient.DefaultTimeout),
		RateLimit:         float64(trailhead.EnvVarOrInt(rateLimitEnvVar, 0)),
		RateBurst:         trailhead.EnvVarOrInt(rateBurstEnvVar, 0),
		RedisURL:          os.Getenv(RedisURLEnvVar),
		RedisPassword:     os.Getenv(redisPasswordEnvVar),
		IdleTimeout:       trailhead.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:       trailhead.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout:      trailhead.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
		SessionName:       trailhead.EnvVarOrString(sessionNameEnvVar, defaultSessionName),
		SessionAuthKey:    os.Getenv(SessionAuthKeyEnvVar),
		SessionEncryptKey: os.Getenv(SessionEncryptKeyEnvVar),
		SessionMaxAge:     trailhead.EnvVarOrInt(sessionMaxAgeEnvVar, defaultSessionMaxAge),
		ViewIdleTTL:       trailhead.EnvVarOrDuration(viewIdleTTLEnvVar, authview.DefaultIdleTTL),
		ViewLoadWait:      trailhead.EnvVarOrDuration(viewLoadWaitEnvVar, handler.DefaultLoadWait),
	}

	host := trailhead.EnvVarOrString(hostEnvVar, DefaultHost)
	port := trailhead.EnvVarOrString(portEnvVar, DefaultPort)
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	cfg.Addr = port
	cfg.BaseURL = trailhead.EnvVarOrURL(BaseURLEnvVar, "http://"+host+port)

	return cfg
}

// validate checks cfg can configure a Ranger, filling in values derived from others.
func (cfg *Config) validate() error {
	if err := cfg.Env.Valid(); err != nil {
		return fmt.Errorf("%w: Env %q", trailhead.ErrBadConfig, cfg.Env)
	}

	if cfg.BaseURL == nil {
		return fmt.Errorf("%w: %s is not a valid URL", trailhead.ErrBadConfig, BaseURLEnvVar)
	}

	if cfg.SessionAuthKey == "" {
		return fmt.Errorf("%w: %s must be set", trailhead.ErrBadConfig, SessionAuthKeyEnvVar)
	}

	if cfg.AuthOrigin == "" {
		cfg.AuthOrigin = origin(cfg.BaseURL)
	}

	return nil
}

// origin is the scheme and host of u.
func origin(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}
