package authclient

import "time"

// A User is the account the auth server signed in.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// GetID returns the auth server's ID for the User.
func (u User) GetID() string { return u.ID }

// GetEmail returns the User's email address.
func (u User) GetEmail() string { return u.Email }

// A Session is the auth server's record of a signed in browser.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData pairs a Session with its User, as returned by GET /get-session.
type SessionData struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// SignInEmail is the body of POST /sign-in/email.
type SignInEmail struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	RememberMe  *bool  `json:"rememberMe,omitempty"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// SignUpEmail is the body of POST /sign-up/email.
type SignUpEmail struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Image       string `json:"image,omitempty"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

// AuthData is what the auth server answers a successful sign in or sign up with.
type AuthData struct {
	Redirect bool   `json:"redirect,omitempty"`
	Token    string `json:"token,omitempty"`
	URL      string `json:"url,omitempty"`
	User     *User  `json:"user,omitempty"`
}

// A Result holds either the data of a 2xx response or the APIError of any other.
//
// Failures reaching the auth server at all are returned as errors alongside a zero Result.
type Result struct {
	Data  *AuthData
	Error *APIError
}
