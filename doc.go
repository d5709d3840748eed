/*
Package trailhead serves a single authentication page - sign in, sign up, sign out -
in front of a remote auth server.

The page is rendered on the server.
Each browser session is bound to an [authview.View],
which holds the form state and turns form posts into calls on an [authclient.Client].
Verifying credentials, issuing sessions and validating tokens
all happen on the remote auth server.

This package holds what every other package shares:
the [Environment], context [Key] values, sentinel errors,
and helpers for reading configuration out of environment variables.
*/
package trailhead
