package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/trailhead/http/session"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w         http.ResponseWriter
	r         *http.Request
	closeBody bool
	code      int
	data      any
	header    http.Header
	tmpls     []string
	url       *url.URL
	user      any
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Data stores the provided empty interface for writing to the client.
//
// Used with Responder.Html and Responder.Json.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			_ = populateUser(d, r)
			d.logger.Error(e.Error(), newLogContext(r.r, e, r.data, r.user))
		}

		return Code(http.StatusInternalServerError)(d, r)
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session
// using either the string set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Header sets a header on the response.
func Header(key, val string) Fn {
	return func(_ Responder, r *Response) error {
		if r.header == nil {
			r.header = make(http.Header)
		}

		r.header.Set(key, val)
		return nil
	}
}

// Layout prepends all templates with the layout template.
//
// If WithLayoutTemplate was not called setting up the Responder, ErrBadConfig returns.
func Layout() Fn {
	return func(d Responder, r *Response) error {
		if d.templates.layout == "" {
			return fmt.Errorf("%w: no layout tmpl", ErrBadConfig)
		}

		if len(r.tmpls) > 0 && r.tmpls[0] == d.templates.layout {
			return nil
		}

		r.tmpls = append([]string{d.templates.layout}, r.tmpls...)
		return nil
	}
}

// NoStore marks the response as one browsers and proxies must not cache.
func NoStore() Fn {
	return func(d Responder, r *Response) error {
		if err := Header("Cache-Control", "no-store")(d, r); err != nil {
			return err
		}

		return Header("Pragma", "no-cache")(d, r)
	}
}

// Tmpls appends to the templates to be rendered.
//
// Used with Responder.Html.
func Tmpls(fps ...string) Fn {
	return func(_ Responder, r *Response) error {
		r.tmpls = append(r.tmpls, fps...)
		return nil
	}
}

// ToRoot sets the redirect destination to the Responder's root URL.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		if d.rootUrl == nil {
			r.url = &url.URL{Path: "/"}
			return nil
		}

		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// User stores the user in the *Response.
//
// Used with Responder.Html and Responder.Json.
// When used with Json, the user is assigned to the "currentUser" key.
func User(u any) Fn {
	return func(d Responder, r *Response) error {
		r.user = u
		return nil
	}
}

// Warn sets a flash warning in the session and logs the warning.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		_ = populateUser(d, r)
		d.logger.Warn(msg, newLogContext(r.r, nil, r.data, r.user))

		return Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r)
	}
}
