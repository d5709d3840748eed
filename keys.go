package trailhead

// A Key stashes values in a context.Context.
type Key string

const (
	// CurrentUserKey stashes the *User signed in for a request.
	CurrentUserKey Key = "CurrentUserKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled by trailhead.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the browser session associated with an HTTP request.
	SessionKey Key = "SessionKey"

	// ViewKey stashes the *authview.View bound to the browser session.
	ViewKey Key = "ViewKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "trailhead context key: " + string(k)
}
