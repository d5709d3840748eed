package resp

import (
	"net/http"

	"github.com/xy-planning-network/trailhead/logger"
)

// A LogDataer picks out what of itself is safe to log.
//
// authview.ViewState implements LogDataer, leaving out what the user typed.
type LogDataer interface {
	LogData() map[string]any
}

// newLogContext structures a logger.LogContext from the parts of a *Response.
// Only a map or a LogDataer reaches LogContext.Data.
func newLogContext(r *http.Request, err error, data any, user any) *logger.LogContext {
	lc := &logger.LogContext{Request: r, Error: err}

	switch d := data.(type) {
	case map[string]any:
		lc.Data = d
	case LogDataer:
		lc.Data = d.LogData()
	}

	if u, ok := user.(logger.LogUser); ok {
		lc.User = u
	}

	if lc.Request == nil && lc.Error == nil && lc.Data == nil && lc.User == nil {
		return nil
	}

	return lc
}

// populateUser pulls the user signed in for the request into the *Response,
// unless User already set one.
func populateUser(d Responder, r *Response) error {
	if r.user != nil {
		return nil
	}

	u, err := d.CurrentUser(r.r.Context())
	if err != nil || u == nil {
		return ErrNoUser
	}

	return User(u)(d, r)
}
