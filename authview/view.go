package authview

import (
	"context"
	"fmt"
	"sync"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authclient"
	"github.com/xy-planning-network/trailhead/logger"
)

// An AuthClient verifies credentials and owns the session a View observes.
//
// *authclient.Client implements AuthClient.
type AuthClient interface {
	SignInEmail(ctx context.Context, body authclient.SignInEmail) (authclient.Result, error)
	SignUpEmail(ctx context.Context, body authclient.SignUpEmail) (authclient.Result, error)
	SignOut(ctx context.Context) error
	Session() *authclient.SessionStore
}

var _ AuthClient = new(authclient.Client)

// A View is the controller behind one authentication form.
// It is safe for concurrent use.
type View struct {
	client AuthClient
	logger logger.Logger

	mu      sync.Mutex
	form    formState
	session authclient.SessionState
	mounted bool
	unsub   func()

	// gen counts Mounts, so a Mount overtaken by Unmount and Mount drops its subscription.
	gen int
}

// A ViewOpt configures a View when constructing one with New.
type ViewOpt func(*View)

// WithLogger sets the logger.Logger a View logs failures with.
func WithLogger(l logger.Logger) ViewOpt {
	return func(v *View) {
		if l == nil {
			return
		}

		v.logger = l
	}
}

// WithMode sets the Mode a View starts in.
// Invalid Modes are ignored.
func WithMode(m Mode) ViewOpt {
	return func(v *View) {
		if m.Valid() != nil {
			return
		}

		v.form.mode = m
	}
}

// New constructs an unmounted View in ModeSignIn.
// Until mounted, it renders as PhaseLoading.
func New(client AuthClient, opts ...ViewOpt) *View {
	v := &View{
		client:  client,
		form:    formState{mode: ModeSignIn},
		session: authclient.SessionState{Pending: true},
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.logger == nil {
		v.logger = logger.New()
	}

	return v
}

// Mount subscribes v to the AuthClient's session.
// Mounting a mounted View is a noop.
func (v *View) Mount() {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = true
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	// the session store calls back synchronously, so v.mu cannot be held here
	unsub := v.client.Session().Subscribe(v.observe)

	v.mu.Lock()
	if !v.mounted || v.gen != gen {
		v.mu.Unlock()
		unsub()
		return
	}

	v.unsub = unsub
	v.mu.Unlock()
}

// Unmount releases v's session subscription.
// Unmounting an unmounted View is a noop.
func (v *View) Unmount() {
	v.mu.Lock()
	unsub := v.unsub
	v.unsub = nil
	v.mounted = false
	v.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Mounted reports whether v is subscribed to the session.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.mounted
}

func (v *View) observe(s authclient.SessionState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.session = s
}

func (v *View) SetName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.form.name = name
}

func (v *View) SetEmail(email string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.form.email = email
}

func (v *View) SetPassword(password string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.form.password = password
}

// ToggleMode switches between ModeSignIn and ModeSignUp, clearing any error.
// What the user typed is kept.
func (v *View) ToggleMode() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.form.mode = v.form.mode.Toggle()
	v.form.errorMessage = ""
}

// Submit signs up or signs in, depending on the Mode, with what the user typed.
//
// Submit returns ErrRequired, changing nothing, if the email or password is empty,
// or, in ModeSignUp, the name is.
// Submit returns ErrInFlight if another Submit has not returned yet.
//
// Otherwise, the outcome is reported through the error message of the View's state:
// the AuthClient's message when it rejects the attempt, a fallback when that message is empty,
// and MsgGeneric for any other failure.
// The AuthClient call is not canceled along with ctx.
func (v *View) Submit(ctx context.Context) error {
	v.mu.Lock()
	f := v.form
	switch {
	case f.email == "", f.password == "", f.mode == ModeSignUp && f.name == "":
		v.mu.Unlock()
		return ErrRequired
	case f.isSubmitting:
		v.mu.Unlock()
		return ErrInFlight
	}

	v.form.isSubmitting = true
	v.form.errorMessage = ""
	v.mu.Unlock()

	var msg string
	defer func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		v.form.errorMessage = msg
		v.form.isSubmitting = false
	}()

	msg = v.attempt(context.WithoutCancel(ctx), f)
	return nil
}

// attempt calls the AuthClient and returns the error message to display, if any.
func (v *View) attempt(ctx context.Context, f formState) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("auth client panicked", &logger.LogContext{
				Caller: logger.CurrentCaller(),
				Data:   map[string]any{"mode": f.mode},
				Error:  fmt.Errorf("%w: %v", trailhead.ErrUnexpected, r),
			})
			msg = MsgGeneric
		}
	}()

	var (
		res      authclient.Result
		err      error
		fallback string
	)

	switch f.mode {
	case ModeSignUp:
		fallback = MsgSignUpFailed
		res, err = v.client.SignUpEmail(ctx, authclient.SignUpEmail{Name: f.name, Email: f.email, Password: f.password})
	default:
		fallback = MsgSignInFailed
		res, err = v.client.SignInEmail(ctx, authclient.SignInEmail{Email: f.email, Password: f.password})
	}

	switch {
	case err != nil:
		v.logger.Error("failed calling auth server", &logger.LogContext{
			Data:  map[string]any{"mode": f.mode},
			Error: err,
		})
		return MsgGeneric
	case res.Error != nil && res.Error.Message != "":
		return res.Error.Message
	// an empty message reads as none
	case res.Error != nil:
		return fallback
	default:
		return ""
	}
}

// SignOut asks the AuthClient to end the session.
// A failure is logged and leaves the View unchanged.
func (v *View) SignOut(ctx context.Context) {
	if err := v.client.SignOut(ctx); err != nil {
		v.logger.Warn("failed signing out", &logger.LogContext{Error: err})
	}
}

// State returns a snapshot of v.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := ViewState{
		Mode:         v.form.mode,
		Name:         v.form.name,
		Email:        v.form.email,
		ErrorMessage: v.form.errorMessage,
		IsSubmitting: v.form.isSubmitting,
	}

	switch {
	case v.session.Pending:
		s.Phase = PhaseLoading
	case v.session.Data != nil:
		s.Phase = PhaseAuthenticated
		s.User = v.session.User()
	default:
		s.Phase = PhaseUnauthenticated
	}

	return s
}

// AwaitSettled blocks until the AuthClient's session has loaded once or ctx is done.
func (v *View) AwaitSettled(ctx context.Context) error {
	select {
	case <-v.client.Session().Settled():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client returns the AuthClient v calls.
func (v *View) Client() AuthClient { return v.client }
