package authview

import "errors"

var (
	ErrInFlight = errors.New("submit already in flight")
	ErrRequired = errors.New("missing required field")
)

// Messages shown in place of a missing or unsafe error from the AuthClient.
const (
	MsgGeneric      = "Something went wrong"
	MsgSignInFailed = "Sign in failed"
	MsgSignUpFailed = "Sign up failed"
)
