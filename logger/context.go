package logger

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"

	"github.com/xy-planning-network/trailhead"
)

const callerTmpl = "%s:%d"

// maskedKeys are scrubbed from request forms and JSON bodies before logging.
var maskedKeys = []string{"password"}

// maskedHeaders carry session tokens and are scrubbed from requests before logging.
var maskedHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

var (
	_ encoding.TextMarshaler = LogContext{}
)

// LogUser is the interface exposing attributes of a user to a LogContext.
type LogUser interface {
	// GetID retrieves the auth server's identifier for a user.
	GetID() string

	// GetEmail retrieves the email address of the user.
	GetEmail() string
}

// A LogContext provides additional information and configuration
// for a [Logger] method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller is not logged in the text of a LogContext.
	//
	// Caller helps goroutines identify the callers of the process that spawned it.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	Request *http.Request

	// User is the user whose session was active during the logging event.
	User LogUser
}

// MarshalText converts LogContext into a JSON representation,
// eliminating zero-value fields or fields not requiring logging.
//
// Passwords in a request's form or JSON body are masked, as are its cookies.
//
// Values in LogContext.Data that cannot be represented in JSON will cause an error to be thrown.
//
// MarshalText implements [encoding.TextMarshaler].
func (lc LogContext) MarshalText() ([]byte, error) {
	m := make(map[string]any)
	if lc.Data != nil {
		m["data"] = lc.Data
	}

	if lc.Error != nil {
		m["error"] = lc.Error.Error()
	}

	if lc.Request != nil {
		m["request"] = marshalRequest(lc.Request)
	}

	if lc.User != nil {
		u := make(map[string]any)
		if id := lc.User.GetID(); id != "" {
			u["id"] = id
		}
		if email := lc.User.GetEmail(); email != "" {
			u["email"] = email
		}
		if len(u) > 0 {
			m["user"] = u
		}
	}

	return json.Marshal(m)
}

// String stringifies LogContext as a JSON representation of it.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err)
	}

	return string(b)
}

// marshalRequest pulls the loggable parts out of r.
// A JSON body is read and replaced so handlers can still read it.
func marshalRequest(r *http.Request) map[string]any {
	req := map[string]any{
		"method": r.Method,
		"url":    r.URL.String(),
		"header": maskHeader(r.Header),
	}

	if ct := r.Header.Get("Content-Type"); ct == "application/json" && r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))

		j := make(map[string]any)
		if err == nil && json.Unmarshal(raw, &j) == nil {
			for _, k := range maskedKeys {
				if _, ok := j[k]; ok {
					j[k] = trailhead.LogMaskVal
				}
			}

			req["json"] = j
		}
	}

	if r.Form != nil {
		form := make(url.Values, len(r.Form))
		for k, v := range r.Form {
			form[k] = v
		}

		trailhead.Mask(form, maskedKeys...)

		req["form"] = form
	}

	return req
}

// maskHeader copies h, replacing the values of maskedHeaders.
func maskHeader(h http.Header) http.Header {
	h = h.Clone()
	for _, k := range maskedHeaders {
		if h.Get(k) != "" {
			h.Set(k, trailhead.LogMaskVal)
		}
	}

	return h
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
//
//	myFunc() { 		<- returns this caller
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf(callerTmpl, immediateFilepath(file), line)
}
