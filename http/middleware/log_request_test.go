package middleware_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/middleware"
)

func TestLogRequest(t *testing.T) {
	// Arrange + Act
	actual := middleware.LogRequest(nil)

	// Assert
	require.Equal(t, fmt.Sprintf("%p", middleware.NoopAdapter), fmt.Sprintf("%p", actual))

	tcs := []struct {
		name     string
		method   string
		target   string
		ip       string
		id       string
		expected string
	}{
		{"Zero-Value", http.MethodGet, "/", "", "", "'GET / 418 "},
		{"With-IP", http.MethodPost, "/submit", "1.1.1.1", "", "'1.1.1.1 POST /submit 418 "},
		{"With-Request-ID", http.MethodGet, "/state", "1.1.1.1", "req-1", "'1.1.1.1 GET /state req-1 418 "},
		{"With-Query-Params", http.MethodPost, "/submit?idempotency_key=abc", "", "", "'POST /submit?idempotency_key=abc 418 "},
		{
			"With-Query-Params-Hid",
			http.MethodGet,
			"/?email=a%40example.com&password=hunter2&token=tok_123",
			"",
			"",
			"'GET /?email=a%40example.com&password=" + trailhead.LogMaskVal + "&token=" + trailhead.LogMaskVal + " 418 ",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			b := new(bytes.Buffer)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, "https://example.com"+tc.target, nil)
			if tc.ip != "" {
				r = r.Clone(context.WithValue(r.Context(), trailhead.IpAddrKey, tc.ip))
			}

			if tc.id != "" {
				r = r.Clone(context.WithValue(r.Context(), trailhead.RequestIDKey, tc.id))
			}

			// Act
			middleware.LogRequest(newTestLogger(b))(teapotHandler()).ServeHTTP(w, r)

			// Assert
			require.Equal(t, http.StatusTeapot, w.Code)
			require.Contains(t, b.String(), tc.expected)
			require.NotContains(t, b.String(), "hunter2")
			require.NotContains(t, b.String(), "tok_123")
		})
	}
}
