package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/logger"
)

const (
	DefaultBasePath = "/api/auth"
	DefaultTimeout  = 10 * time.Second

	getSessionPath  = "/get-session"
	signInEmailPath = "/sign-in/email"
	signOutPath     = "/sign-out"
	signUpEmailPath = "/sign-up/email"
)

// A Client calls the auth server on behalf of a single browser.
type Client struct {
	base   *url.URL
	hc     *http.Client
	logger logger.Logger
	origin string
	store  *SessionStore

	mu      sync.Mutex
	cookies map[string]string
}

// New constructs a Client rooted at baseURL.
// When baseURL carries no path, DefaultBasePath is used.
//
// The Client's SessionStore is pending until its first Refresh.
func New(baseURL string, opts ...ClientOpt) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: auth server URL %q: %s", trailhead.ErrBadConfig, baseURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: auth server URL %q is not absolute", trailhead.ErrBadConfig, baseURL)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultBasePath
	}

	c := &Client{
		base:    u,
		hc:      &http.Client{Timeout: DefaultTimeout},
		cookies: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.New()
	}

	c.store = NewSessionStore(c.GetSession)

	return c, nil
}

// Cookies exports the cookies the auth server has set on the Client.
func (c *Client) Cookies() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		out[k] = v
	}

	return out
}

// Session returns the SessionStore observing this Client's session.
func (c *Client) Session() *SessionStore { return c.store }

// SignInEmail signs in with an email and password.
//
// A 2xx response refreshes the Client's SessionStore.
func (c *Client) SignInEmail(ctx context.Context, body SignInEmail) (Result, error) {
	return c.authenticate(ctx, signInEmailPath, body)
}

// SignUpEmail creates an account and signs it in.
//
// A 2xx response refreshes the Client's SessionStore.
func (c *Client) SignUpEmail(ctx context.Context, body SignUpEmail) (Result, error) {
	return c.authenticate(ctx, signUpEmailPath, body)
}

// SignOut ends the session on the auth server.
//
// A non-2xx response is returned as an *APIError.
// Success refreshes the Client's SessionStore.
func (c *Client) SignOut(ctx context.Context) error {
	res, err := c.do(ctx, http.MethodPost, signOutPath, struct{}{})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if apiErr := readAPIError(res); apiErr != nil {
		return apiErr
	}

	c.refresh(ctx)
	return nil
}

// GetSession fetches the current session.
// No session is a nil *SessionData and a nil error.
func (c *Client) GetSession(ctx context.Context) (*SessionData, error) {
	res, err := c.do(ctx, http.MethodGet, getSessionPath, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if apiErr := readAPIError(res); apiErr != nil {
		return nil, apiErr
	}

	var data *SessionData
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	if data != nil && data.User.ID == "" {
		return nil, nil
	}

	return data, nil
}

func (c *Client) authenticate(ctx context.Context, p string, body any) (Result, error) {
	res, err := c.do(ctx, http.MethodPost, p, body)
	if err != nil {
		return Result{}, err
	}
	defer res.Body.Close()

	if apiErr := readAPIError(res); apiErr != nil {
		return Result{Error: apiErr}, nil
	}

	data := new(AuthData)
	if err := json.NewDecoder(res.Body).Decode(data); err != nil && err != io.EOF {
		return Result{}, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	c.refresh(ctx)
	return Result{Data: data}, nil
}

// do sends a request to the auth server, attaching the Client's cookies
// and storing any the response sets.
func (c *Client) do(ctx context.Context, method, p string, body any) (*http.Response, error) {
	u := *c.base
	u.Path = path.Join(c.base.Path, p)

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequest, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if method == http.MethodPost && c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	c.mu.Lock()
	for k, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	c.mu.Unlock()

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrRequest, method, p, err)
	}

	c.storeCookies(res.Cookies())

	return res, nil
}

func (c *Client) storeCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ck := range cookies {
		if ck.MaxAge < 0 || ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(now)) {
			delete(c.cookies, ck.Name)
			continue
		}

		c.cookies[ck.Name] = ck.Value
	}
}

// refresh updates the SessionStore after a state-changing call.
// Its failure does not fail that call.
func (c *Client) refresh(ctx context.Context) {
	if err := c.store.Refresh(ctx); err != nil {
		c.logger.Warn("failed refreshing session", &logger.LogContext{Error: err})
	}
}

// readAPIError returns nil for a 2xx response.
// Otherwise it decodes what it can of the body into an *APIError.
func readAPIError(res *http.Response) *APIError {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	apiErr := newAPIError(res.StatusCode)

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}

	return apiErr
}
