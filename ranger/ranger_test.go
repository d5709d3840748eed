package ranger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authclient"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/ranger"

	trailtmpl "github.com/xy-planning-network/trailhead/http/template"
	tt "github.com/xy-planning-network/trailhead/http/template/templatetest"
)

const (
	testAuthKey  = "f0f42f970982be947b6536df8a0d2489d7f06d15e6d36cfbfae7ac16ccbe7cc5"
	testCookie   = "better-auth.session_token"
	testEmail    = "husserl@example.com"
	testPassword = "hunter22"
	testToken    = "tok_123"
)

type brokenParser struct{}

func (brokenParser) AddFn(string, any) {}
func (brokenParser) Parse(...string) (*template.Template, error) {
	return nil, errors.New("no templates")
}

func quietLogger() logger.Logger { return logger.New(logger.WithLogger(log.New(io.Discard, "", 0))) }

func TestMaintModeHandler(t *testing.T) {
	// Arrange
	l := quietLogger()
	handler := ranger.MaintModeHandler(brokenParser{}, l, "test@example.com")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	// Act + Assert
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "600", rr.Result().Header.Get("Retry-After"))
	require.Equal(t, "", rr.Body.String())

	// Arrange -- Test POST w/ route & tmpl content
	msg := "Sorry for the inconvenience, write {{ .Contact }}"
	p := trailtmpl.NewParser(trailtmpl.WithFS(tt.NewMockFS(tt.NewMockFile(trailtmpl.MaintenanceTmpl, []byte(msg)))))
	handler = ranger.MaintModeHandler(p, l, "test@example.com")
	req = httptest.NewRequest(http.MethodPost, "/maint-mode-test", nil)
	rr = httptest.NewRecorder()

	// Act + Assert
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "600", rr.Result().Header.Get("Retry-After"))
	require.Equal(t, "Sorry for the inconvenience, write test@example.com", rr.Body.String())
}

func TestNewConfig(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("PORT", "9000")
	t.Setenv("AUTH_SERVER_URL", "https://auth.example.com/api/auth")
	t.Setenv("AUTH_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("VIEW_LOAD_WAIT", "nonsense")
	t.Setenv("BASE_URL", "")

	// Act
	cfg := ranger.NewConfig()

	// Assert
	require.Equal(t, trailhead.Staging, cfg.Env)
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, "http://localhost:9000", cfg.BaseURL.String())
	require.Equal(t, "https://auth.example.com/api/auth", cfg.AuthServerURL)
	require.Equal(t, 3*time.Second, cfg.AuthTimeout)
	require.Equal(t, logger.LogLevelDebug, cfg.LogLevel)
	require.Equal(t, 500*time.Millisecond, cfg.ViewLoadWait)
	require.Equal(t, "trailhead", cfg.SessionName)
}

func TestNewBadConfig(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(*ranger.Config)
	}{
		{"No-Session-Key", func(c *ranger.Config) { c.SessionAuthKey = "" }},
		{"Bad-Session-Key", func(c *ranger.Config) { c.SessionAuthKey = "not hex" }},
		{"Bad-Env", func(c *ranger.Config) { c.Env = "NOPE" }},
		{"No-Base-URL", func(c *ranger.Config) { c.BaseURL = nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			cfg := testConfig("http://localhost:8080", "http://localhost:3000")
			tc.edit(&cfg)

			// Act
			_, err := ranger.New(ranger.WithConfig(cfg), ranger.WithLogger(quietLogger()))

			// Assert
			require.ErrorIs(t, err, trailhead.ErrBadConfig)
		})
	}
}

func TestRangerMaintenanceMode(t *testing.T) {
	// Arrange
	cfg := testConfig("http://localhost:8080", "http://localhost:3000")
	cfg.MaintenanceMode = true

	rng, err := ranger.New(ranger.WithConfig(cfg), ranger.WithLogger(quietLogger()))
	require.Nil(t, err)

	for _, path := range []string{"/", "/submit", "/anything"} {
		w := httptest.NewRecorder()

		// Act
		rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		// Assert
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Contains(t, w.Body.String(), "Down for maintenance")
	}
}

func TestRangerAuthFlow(t *testing.T) {
	// Arrange
	auth := new(fakeAuthServer)
	authSrv := httptest.NewServer(auth.handler())
	t.Cleanup(authSrv.Close)

	var rng *ranger.Ranger
	app := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng.ServeHTTP(w, r)
	}))
	app.Start()
	t.Cleanup(app.Close)

	rng, err := ranger.New(
		ranger.WithConfig(testConfig(app.URL, authSrv.URL)),
		ranger.WithLogger(quietLogger()),
		ranger.WithAuthHTTPClient(authSrv.Client()),
	)
	require.Nil(t, err)
	t.Cleanup(func() { rng.EmitRegistry().Close() })

	jar, err := cookiejar.New(nil)
	require.Nil(t, err)

	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	get := func(t *testing.T, path string) (int, string) {
		res, err := browser.Get(app.URL + path)
		require.Nil(t, err)
		defer res.Body.Close()

		b, err := io.ReadAll(res.Body)
		require.Nil(t, err)
		return res.StatusCode, string(b)
	}

	post := func(t *testing.T, path string, form url.Values) *http.Response {
		res, err := browser.PostForm(app.URL+path, form)
		require.Nil(t, err)
		res.Body.Close()
		return res
	}

	t.Run("Signed-Out", func(t *testing.T) {
		code, body := get(t, "/")
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, "Enter your credentials to continue")
		require.Equal(t, 1, rng.EmitRegistry().Len())
	})

	t.Run("Missing-Idempotency-Key", func(t *testing.T) {
		res := post(t, "/submit", url.Values{"mode": {"sign-in"}, "email": {testEmail}, "password": {testPassword}})
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.Zero(t, auth.count())
	})

	t.Run("Rejected", func(t *testing.T) {
		res := post(t, "/submit?idempotency_key=k1", url.Values{"mode": {"sign-in"}, "email": {testEmail}, "password": {"not-the-password"}})
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		require.Equal(t, app.URL, res.Header.Get("Location"))

		code, body := get(t, "/")
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, "Invalid email or password")
		require.NotContains(t, body, "not-the-password")
	})

	t.Run("Toggle", func(t *testing.T) {
		res := post(t, "/mode", url.Values{"mode": {"sign-in"}})
		require.Equal(t, http.StatusSeeOther, res.StatusCode)

		_, body := get(t, "/")
		require.Contains(t, body, "Create an account")
		require.NotContains(t, body, "Invalid email or password")
		require.Contains(t, body, testEmail)

		res = post(t, "/mode", url.Values{"mode": {"sign-up"}})
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
	})

	t.Run("Sign-In", func(t *testing.T) {
		form := url.Values{"mode": {"sign-in"}, "email": {testEmail}, "password": {testPassword}}
		res := post(t, "/submit?idempotency_key=k2", form)
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		require.Equal(t, 2, auth.count())
		require.Equal(t, app.URL, auth.lastOrigin())

		code, body := get(t, "/")
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, "Welcome back")
		require.Contains(t, body, testEmail)

		code, body = get(t, "/state")
		require.Equal(t, http.StatusOK, code)

		var state struct {
			Data struct {
				Phase string          `json:"phase"`
				User  authclient.User `json:"user"`
			} `json:"data"`
		}
		require.Nil(t, json.NewDecoder(strings.NewReader(body)).Decode(&state))
		require.Equal(t, "authenticated", state.Data.Phase)
		require.Equal(t, testEmail, state.Data.User.Email)
	})

	t.Run("Submit-While-Signed-In", func(t *testing.T) {
		form := url.Values{"mode": {"sign-in"}, "email": {testEmail}, "password": {testPassword}}
		res := post(t, "/submit?idempotency_key=k3", form)
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		require.Equal(t, 2, auth.count())
	})

	t.Run("Sign-Out", func(t *testing.T) {
		res := post(t, "/sign-out", url.Values{})
		require.Equal(t, http.StatusSeeOther, res.StatusCode)

		code, body := get(t, "/")
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, "You have been signed out.")
		require.Contains(t, body, "Enter your credentials to continue")
	})

	t.Run("Not-Found", func(t *testing.T) {
		code, _ := get(t, "/nowhere")
		require.Equal(t, http.StatusSeeOther, code)
	})
}

func TestRangerRestoresSession(t *testing.T) {
	// Arrange
	auth := new(fakeAuthServer)
	auth.signedIn = true
	authSrv := httptest.NewServer(auth.handler())
	t.Cleanup(authSrv.Close)

	rng, err := ranger.New(
		ranger.WithConfig(testConfig("http://localhost:8080", authSrv.URL)),
		ranger.WithLogger(quietLogger()),
		ranger.WithAuthHTTPClient(authSrv.Client()),
	)
	require.Nil(t, err)
	t.Cleanup(func() { rng.EmitRegistry().Close() })

	// a session without auth cookies is signed out, whatever the auth server holds
	w := httptest.NewRecorder()

	// Act
	rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://localhost:8080/", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Enter your credentials to continue")
}

func TestRangerShutdown(t *testing.T) {
	// Arrange
	cfg := testConfig("http://localhost:8080", "http://localhost:3000")
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	rng, err := ranger.New(ranger.WithConfig(cfg), ranger.WithContext(ctx), ranger.WithLogger(quietLogger()))
	require.Nil(t, err)

	done := make(chan error, 1)
	go func() { done <- rng.Guide() }()

	// Act
	cancel()

	// Assert
	select {
	case err := <-done:
		require.Nil(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Guide did not return")
	}
}

func testConfig(base, authURL string) ranger.Config {
	u, err := url.ParseRequestURI(base)
	if err != nil {
		panic(err)
	}

	return ranger.Config{
		Env:            trailhead.Testing,
		BaseURL:        u,
		LogLevel:       logger.LogLevelError,
		AuthServerURL:  authURL + authclient.DefaultBasePath,
		AuthTimeout:    time.Second,
		Addr:           ":0",
		SessionName:    "trailhead-test",
		SessionAuthKey: testAuthKey,
		SessionMaxAge:  3600,
		ViewIdleTTL:    time.Minute,
		ViewLoadWait:   time.Second,
	}
}

// fakeAuthServer imitates the endpoints of a better-auth server.
type fakeAuthServer struct {
	mu       sync.Mutex
	signins  int
	origins  []string
	signedIn bool
}

func (f *fakeAuthServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.signins
}

func (f *fakeAuthServer) lastOrigin() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.origins) == 0 {
		return ""
	}

	return f.origins[len(f.origins)-1]
}

func (f *fakeAuthServer) handler() http.Handler {
	user := authclient.User{ID: "u1", Name: "Edmund Husserl", Email: testEmail}
	writeJSON := func(w http.ResponseWriter, code int, v any) {
		b := new(bytes.Buffer)
		json.NewEncoder(b).Encode(v)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		b.WriteTo(w)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/get-session", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		signedIn := f.signedIn
		f.mu.Unlock()

		ck, err := r.Cookie(testCookie)
		if !signedIn || err != nil || ck.Value != testToken {
			writeJSON(w, http.StatusOK, nil)
			return
		}

		writeJSON(w, http.StatusOK, authclient.SessionData{
			Session: authclient.Session{ID: "s1", UserID: user.ID, Token: testToken},
			User:    user,
		})
	})

	mux.HandleFunc("/api/auth/sign-in/email", func(w http.ResponseWriter, r *http.Request) {
		var body authclient.SignInEmail
		json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.signins++
		f.origins = append(f.origins, r.Header.Get("Origin"))
		f.mu.Unlock()

		if body.Email != testEmail || body.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"code":    "INVALID_EMAIL_OR_PASSWORD",
				"message": "Invalid email or password",
			})
			return
		}

		f.mu.Lock()
		f.signedIn = true
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: testCookie, Value: testToken, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, authclient.AuthData{Token: testToken, User: &user})
	})

	mux.HandleFunc("/api/auth/sign-out", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.signedIn = false
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: testCookie, Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	return mux
}
