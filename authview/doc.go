/*
Package authview controls the state of an authentication form.

A View holds what the user typed, which form is showing (sign in or sign up),
the last error to display and whether a submission is in flight.
Whether anyone is signed in is never stored on the View:
it observes the AuthClient's session from Mount until Unmount.

A Registry keeps one mounted View per browser session.
*/
package authview
