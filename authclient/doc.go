/*
Package authclient talks to a better-auth style authentication server over its REST API.

A Client carries the cookies the auth server sets, so construct one Client per browser.
Sign in, sign up and sign out each refresh the Client's SessionStore,
which pushes the new SessionState to every subscriber:

	c, err := authclient.New("http://localhost:3000", authclient.WithOrigin("http://localhost:8080"))
	if err != nil {
		// handle
	}

	unsub := c.Session().Subscribe(func(s authclient.SessionState) {
		// render s
	})
	defer unsub()

	res, err := c.SignInEmail(ctx, authclient.SignInEmail{Email: "you@example.com", Password: "hunter22"})
	switch {
	case err != nil:
		// transport failure
	case res.Error != nil:
		// the server rejected the credentials
	}
*/
package authclient
