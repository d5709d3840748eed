package authview

import (
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

// Mode is which form a View presents.
type Mode string

const (
	ModeSignIn Mode = "sign-in"
	ModeSignUp Mode = "sign-up"
)

var _ trailhead.Enumerable = ModeSignIn

// String stringifies m.
//
// String implements trailhead.Enumerable.
func (m Mode) String() string { return string(m) }

// Toggle returns the other Mode.
func (m Mode) Toggle() Mode {
	if m == ModeSignUp {
		return ModeSignIn
	}

	return ModeSignUp
}

// Valid errors if m is not a known Mode.
//
// Valid implements trailhead.Enumerable.
func (m Mode) Valid() error {
	switch m {
	case ModeSignIn, ModeSignUp:
		return nil
	default:
		return fmt.Errorf("%w: Mode %q", trailhead.ErrNotValid, string(m))
	}
}
