package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/logger"
)

// maskedParams never reach the logs LogRequest writes.
var maskedParams = []string{"password", "token"}

// LogRequest logs, once the request is served, its originating IP address, method, requested URL
// and request ID, followed by the response's status code and how long serving it took.
//
// LogRequest scrubs the query param values for these keys:
//   - password
//   - token
//
// If ls is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uri := r.URL.Path
			q := r.URL.Query()
			trailhead.Mask(q, maskedParams...)

			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			strs := []string{r.Method, uri}
			if ip, ok := r.Context().Value(trailhead.IpAddrKey).(string); ok {
				strs = append([]string{ip}, strs...)
			}

			if id, ok := r.Context().Value(trailhead.RequestIDKey).(string); ok {
				strs = append(strs, id)
			}

			m := httpsnoop.CaptureMetrics(h, w, r)
			strs = append(strs, strconv.Itoa(m.Code), m.Duration.String())

			ls.Info(strings.Join(strs, " "), nil)
		})
	}
}
