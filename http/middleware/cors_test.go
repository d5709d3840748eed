package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/http/middleware"
)

func TestCORS(t *testing.T) {
	base := "https://example.com"

	tcs := []struct {
		name    string
		method  string
		origin  string
		headers map[string]string
		code    int
		allowed string
	}{
		{"Same-Origin-Get", http.MethodGet, "", nil, http.StatusTeapot, ""},
		{"Allowed-Get", http.MethodGet, base, nil, http.StatusTeapot, base},
		{"Disallowed-Get", http.MethodGet, "https://evil.example.com", nil, http.StatusTeapot, ""},
		{
			"Preflight",
			http.MethodOptions,
			base,
			map[string]string{
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": middleware.IdempotencyHeader,
			},
			http.StatusOK,
			base,
		},
		{
			"Preflight-Bad-Header",
			http.MethodOptions,
			base,
			map[string]string{
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": "X-Unknown",
			},
			http.StatusForbidden,
			"",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, base+"/state", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}

			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}

			// Act
			middleware.CORS(base)(teapotHandler()).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.allowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
