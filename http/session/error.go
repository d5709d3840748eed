package session

import (
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

// ErrBadViewID means a session holds something other than a View's ID under its key.
var ErrBadViewID = fmt.Errorf("%w: view id", trailhead.ErrNotValid)
