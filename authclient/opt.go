package authclient

import (
	"net/http"
	"time"

	"github.com/xy-planning-network/trailhead/logger"
)

// A ClientOpt configures a Client when constructing one with New.
type ClientOpt func(*Client)

// WithCookies seeds the Client with cookies previously exported with Client.Cookies.
func WithCookies(cookies map[string]string) ClientOpt {
	return func(c *Client) {
		for k, v := range cookies {
			c.cookies[k] = v
		}
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		if hc == nil {
			return
		}

		c.hc = hc
	}
}

// WithLogger sets the logger.Logger the Client logs with.
func WithLogger(l logger.Logger) ClientOpt {
	return func(c *Client) {
		if l == nil {
			return
		}

		c.logger = l
	}
}

// WithOrigin sets the Origin header sent with every POST.
// The auth server checks it against its trusted origins.
func WithOrigin(origin string) ClientOpt {
	return func(c *Client) {
		c.origin = origin
	}
}

// WithTimeout sets the timeout for a single request to the auth server.
//
// Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		if d <= 0 {
			return
		}

		c.hc.Timeout = d
	}
}
