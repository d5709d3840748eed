package session

import (
	"net/http"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey     = "trailhead-session-gorilla" // used by Service
	viewIDKey      = sessionKey + "-view"        // used by Session
	authCookiesKey = sessionKey + "-auth"        // used by Session
)

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The ViewSessionable wraps methods binding a browser session
// to an auth form and to the cookies the auth server issued it.
type ViewSessionable interface {
	AuthCookies() map[string]string
	SetAuthCookies(w http.ResponseWriter, r *http.Request, cookies map[string]string) error
	ViewID(w http.ResponseWriter, r *http.Request) (string, error)
}

// The TrailheadSessionable composes session's major interfaces.
type TrailheadSessionable interface {
	FlashSessionable
	Sessionable
	ViewSessionable
}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session as an implementation of TrailheadSessionable.
func NewSession(g *gorilla.Session) TrailheadSessionable { return Session{s: g} }

// AuthCookies retrieves the auth server's cookies stored in the session.
func (s Session) AuthCookies() map[string]string {
	m, ok := s.s.Values[authCookiesKey].(map[string]string)
	if !ok {
		return nil
	}

	return m
}

func (s Session) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	_ = s.Flashes(w, r)
}

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}
	if len(fs) > 0 {
		// NOTE: Flashes are removed after they are accessed,
		// but the session needs to be saved for them to be finally removed
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// ResetExpiry pushes the session's expiration back by a full max age by saving it.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetAuthCookies replaces the auth server's cookies stored in the session.
// An empty cookies removes them.
func (s Session) SetAuthCookies(w http.ResponseWriter, r *http.Request, cookies map[string]string) error {
	if len(cookies) == 0 {
		delete(s.s.Values, authCookiesKey)
	} else {
		s.s.Values[authCookiesKey] = cookies
	}

	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// ViewID gets the ID of the auth form bound to the session,
// generating and saving one if the session has none.
//
// If the value stored is not a string, ErrBadViewID is returned and represents a programming error.
func (s Session) ViewID(w http.ResponseWriter, r *http.Request) (string, error) {
	intfVal, ok := s.s.Values[viewIDKey]
	if !ok {
		id := uuid.NewString()
		if err := s.Set(w, r, viewIDKey, id); err != nil {
			return "", err
		}

		return id, nil
	}

	val, ok := intfVal.(string)
	if !ok || val == "" {
		return "", ErrBadViewID
	}

	return val, nil
}
