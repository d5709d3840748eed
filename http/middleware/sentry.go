package middleware

import (
	"fmt"
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/logger"
)

// ReportPanic recovers panics raised by handlers, logs them,
// and responds with 500.
//
// Outside of development, panics are also reported to Sentry through sentryhttp
// before being recovered.
func ReportPanic(env trailhead.Environment, log logger.Logger) Adapter {
	if log == nil {
		log = logger.New()
	}

	return func(handler http.Handler) http.Handler {
		if !env.IsDevelopment() {
			sh := sentryhttp.New(sentryhttp.Options{
				Repanic:         true,
				WaitForDelivery: true,
			})
			handler = sh.Handle(handler)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("%w: recovered panic: %v", trailhead.ErrUnexpected, rec)
				log.Error(err.Error(), &logger.LogContext{Request: r, Error: err})
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			handler.ServeHTTP(w, r)
		})
	}
}
