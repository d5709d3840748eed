package authview_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/authclient"
	"github.com/xy-planning-network/trailhead/authview"
	"github.com/xy-planning-network/trailhead/logger"
)

const (
	testEmail    = "husserl@example.com"
	testName     = "Edmund Husserl"
	testPassword = "hunter22"
)

var testUser = authclient.User{ID: "usr_1", Name: testName, Email: testEmail}

// mockClient is an AuthClient whose session is driven by the test.
type mockClient struct {
	mock.Mock

	store   *authclient.SessionStore
	mu      sync.Mutex
	current *authclient.SessionData
}

func newMockClient() *mockClient {
	c := new(mockClient)
	c.store = authclient.NewSessionStore(func(ctx context.Context) (*authclient.SessionData, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.current, nil
	})
	return c
}

// signIn makes the next session fetch return testUser.
func (c *mockClient) signIn() {
	c.mu.Lock()
	c.current = &authclient.SessionData{User: testUser}
	c.mu.Unlock()
}

func (c *mockClient) SignInEmail(ctx context.Context, body authclient.SignInEmail) (authclient.Result, error) {
	args := c.Called(ctx, body)
	return args.Get(0).(authclient.Result), args.Error(1)
}

func (c *mockClient) SignUpEmail(ctx context.Context, body authclient.SignUpEmail) (authclient.Result, error) {
	args := c.Called(ctx, body)
	return args.Get(0).(authclient.Result), args.Error(1)
}

func (c *mockClient) SignOut(ctx context.Context) error {
	return c.Called(ctx).Error(0)
}

func (c *mockClient) Session() *authclient.SessionStore { return c.store }

func quietLogger() logger.Logger {
	return logger.New(logger.WithLevel(logger.LogLevelFatal))
}

func newTestView(t *testing.T, opts ...authview.ViewOpt) (*authview.View, *mockClient) {
	c := newMockClient()
	v := authview.New(c, append([]authview.ViewOpt{authview.WithLogger(quietLogger())}, opts...)...)
	v.Mount()
	t.Cleanup(v.Unmount)

	require.Nil(t, c.store.Refresh(context.Background()))
	return v, c
}

func fill(v *authview.View, name, email, password string) {
	v.SetName(name)
	v.SetEmail(email)
	v.SetPassword(password)
}

func TestNew(t *testing.T) {
	// Arrange
	c := newMockClient()

	// Act
	v := authview.New(c, authview.WithMode(authview.Mode("bogus")))

	// Assert
	s := v.State()
	require.Equal(t, authview.PhaseLoading, s.Phase)
	require.Equal(t, authview.ModeSignIn, s.Mode)
	require.False(t, v.Mounted())

	// Act
	v = authview.New(c, authview.WithMode(authview.ModeSignUp))

	// Assert
	require.Equal(t, authview.ModeSignUp, v.State().Mode)
}

func TestMount(t *testing.T) {
	// Arrange
	c := newMockClient()
	v := authview.New(c, authview.WithLogger(quietLogger()))

	// Act
	v.Mount()
	v.Mount()
	require.Nil(t, c.store.Refresh(context.Background()))

	// Assert
	require.True(t, v.Mounted())
	require.Equal(t, authview.PhaseUnauthenticated, v.State().Phase)

	// Act
	v.Unmount()
	v.Unmount()
	c.signIn()
	require.Nil(t, c.store.Refresh(context.Background()))

	// Assert
	require.False(t, v.Mounted())
	require.Equal(t, authview.PhaseUnauthenticated, v.State().Phase)
}

func TestMountRacingUnmount(t *testing.T) {
	for i := 0; i < 100; i++ {
		// Arrange
		var wg sync.WaitGroup
		c := newMockClient()
		v := authview.New(c, authview.WithLogger(quietLogger()))

		// Act
		for _, fn := range []func(){v.Mount, v.Unmount, v.Mount} {
			wg.Add(1)
			go func(fn func()) {
				defer wg.Done()
				fn()
			}(fn)
		}
		wg.Wait()

		v.Unmount()
		c.signIn()
		require.Nil(t, c.store.Refresh(context.Background()))

		// Assert
		require.False(t, v.Mounted())
		require.Equal(t, authview.PhaseLoading, v.State().Phase)
	}
}

func TestPhases(t *testing.T) {
	// Arrange
	c := newMockClient()
	v := authview.New(c, authview.WithLogger(quietLogger()))
	v.Mount()
	defer v.Unmount()

	// Assert
	require.Equal(t, authview.PhaseLoading, v.State().Phase)

	// Act
	require.Nil(t, c.store.Refresh(context.Background()))

	// Assert
	require.Equal(t, authview.PhaseUnauthenticated, v.State().Phase)
	require.Nil(t, v.State().User)

	// Act
	c.signIn()
	require.Nil(t, c.store.Refresh(context.Background()))

	// Assert
	s := v.State()
	require.Equal(t, authview.PhaseAuthenticated, s.Phase)
	require.Equal(t, testEmail, s.UserEmail())
}

func TestToggleMode(t *testing.T) {
	for _, start := range []authview.Mode{authview.ModeSignIn, authview.ModeSignUp} {
		t.Run(start.String(), func(t *testing.T) {
			// Arrange
			v, c := newTestView(t, authview.WithMode(start))
			fill(v, testName, testEmail, "wrong")
			c.On("SignInEmail", mock.Anything, mock.Anything).Return(authclient.Result{Error: &authclient.APIError{Message: "Invalid password"}}, nil)
			c.On("SignUpEmail", mock.Anything, mock.Anything).Return(authclient.Result{Error: &authclient.APIError{Message: "Invalid password"}}, nil)
			require.Nil(t, v.Submit(context.Background()))
			require.Equal(t, "Invalid password", v.State().ErrorMessage)

			// Act
			v.ToggleMode()

			// Assert
			s := v.State()
			require.Equal(t, start.Toggle(), s.Mode)
			require.Empty(t, s.ErrorMessage)
			require.Equal(t, testName, s.Name)
			require.Equal(t, testEmail, s.Email)

			// Act
			v.ToggleMode()

			// Assert
			require.Equal(t, start, v.State().Mode)
		})
	}
}

func TestSubmitRequired(t *testing.T) {
	for _, tc := range []struct {
		name     string
		mode     authview.Mode
		fullName string
		email    string
		password string
	}{
		{"Sign-Up-No-Name", authview.ModeSignUp, "", testEmail, testPassword},
		{"Sign-Up-No-Email", authview.ModeSignUp, testName, "", testPassword},
		{"Sign-Up-No-Password", authview.ModeSignUp, testName, testEmail, ""},
		{"Sign-Up-Nothing", authview.ModeSignUp, "", "", ""},
		{"Sign-In-No-Email", authview.ModeSignIn, "", "", testPassword},
		{"Sign-In-No-Password", authview.ModeSignIn, "", testEmail, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			v, c := newTestView(t, authview.WithMode(tc.mode))
			fill(v, tc.fullName, tc.email, tc.password)
			before := v.State()

			// Act
			err := v.Submit(context.Background())

			// Assert
			require.ErrorIs(t, err, authview.ErrRequired)
			require.Equal(t, before, v.State())
			c.AssertNotCalled(t, "SignInEmail", mock.Anything, mock.Anything)
			c.AssertNotCalled(t, "SignUpEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitSignInNeedsNoName(t *testing.T) {
	// Arrange
	v, c := newTestView(t)
	fill(v, "", testEmail, testPassword)
	c.On("SignInEmail", mock.Anything, authclient.SignInEmail{Email: testEmail, Password: testPassword}).
		Return(authclient.Result{Data: &authclient.AuthData{}}, nil).
		Once()

	// Act
	err := v.Submit(context.Background())

	// Assert
	require.Nil(t, err)
	require.Empty(t, v.State().ErrorMessage)
	c.AssertExpectations(t)
}

func TestSubmitOutcomes(t *testing.T) {
	for _, tc := range []struct {
		name     string
		mode     authview.Mode
		res      authclient.Result
		err      error
		panics   bool
		expected string
	}{
		{"Sign-In-Ok", authview.ModeSignIn, authclient.Result{Data: &authclient.AuthData{}}, nil, false, ""},
		{"Sign-In-Message", authview.ModeSignIn, authclient.Result{Error: &authclient.APIError{Message: "Invalid password"}}, nil, false, "Invalid password"},
		{"Sign-In-No-Message", authview.ModeSignIn, authclient.Result{Error: &authclient.APIError{}}, nil, false, authview.MsgSignInFailed},
		{"Sign-In-Transport", authview.ModeSignIn, authclient.Result{}, errors.New("dial tcp: refused"), false, authview.MsgGeneric},
		{"Sign-In-Panic", authview.ModeSignIn, authclient.Result{}, nil, true, authview.MsgGeneric},
		{"Sign-Up-Ok", authview.ModeSignUp, authclient.Result{Data: &authclient.AuthData{}}, nil, false, ""},
		{"Sign-Up-Message", authview.ModeSignUp, authclient.Result{Error: &authclient.APIError{Message: "User already exists"}}, nil, false, "User already exists"},
		{"Sign-Up-No-Message", authview.ModeSignUp, authclient.Result{Error: &authclient.APIError{Code: "USER_ALREADY_EXISTS"}}, nil, false, authview.MsgSignUpFailed},
		{"Sign-Up-Transport", authview.ModeSignUp, authclient.Result{}, errors.New("timeout"), false, authview.MsgGeneric},
		{"Sign-Up-Panic", authview.ModeSignUp, authclient.Result{}, nil, true, authview.MsgGeneric},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			v, c := newTestView(t, authview.WithMode(tc.mode))
			fill(v, testName, testEmail, testPassword)

			method := "SignInEmail"
			body := any(authclient.SignInEmail{Email: testEmail, Password: testPassword})
			if tc.mode == authview.ModeSignUp {
				method = "SignUpEmail"
				body = authclient.SignUpEmail{Name: testName, Email: testEmail, Password: testPassword}
			}

			call := c.On(method, mock.Anything, body).Once()
			if tc.panics {
				call.Run(func(mock.Arguments) { panic("boom") })
			}
			call.Return(tc.res, tc.err)

			// Act
			err := v.Submit(context.Background())

			// Assert
			require.Nil(t, err)
			s := v.State()
			require.Equal(t, tc.expected, s.ErrorMessage)
			require.False(t, s.IsSubmitting)
			c.AssertExpectations(t)
		})
	}
}

func TestSubmitClearsPreviousError(t *testing.T) {
	// Arrange
	v, c := newTestView(t)
	fill(v, "", testEmail, testPassword)
	c.On("SignInEmail", mock.Anything, mock.Anything).Return(authclient.Result{Error: &authclient.APIError{Message: "Invalid password"}}, nil).Once()
	require.Nil(t, v.Submit(context.Background()))
	require.Equal(t, "Invalid password", v.State().ErrorMessage)

	seen := make(chan authview.ViewState, 1)
	c.On("SignInEmail", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { seen <- v.State() }).
		Return(authclient.Result{Data: &authclient.AuthData{}}, nil).
		Once()

	// Act
	require.Nil(t, v.Submit(context.Background()))

	// Assert
	during := <-seen
	require.Empty(t, during.ErrorMessage)
	require.True(t, during.IsSubmitting)
	require.Equal(t, "Loading...", during.SubmitLabel())
	require.Empty(t, v.State().ErrorMessage)
}

func TestSubmitInFlight(t *testing.T) {
	// Arrange
	v, c := newTestView(t)
	fill(v, "", testEmail, testPassword)

	entered := make(chan struct{})
	release := make(chan struct{})
	c.On("SignInEmail", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(authclient.Result{Data: &authclient.AuthData{}}, nil).
		Once()

	done := make(chan error)
	go func() { done <- v.Submit(context.Background()) }()
	<-entered

	// Act
	err := v.Submit(context.Background())

	// Assert
	require.ErrorIs(t, err, authview.ErrInFlight)
	require.True(t, v.State().IsSubmitting)

	// Act
	close(release)

	// Assert
	require.Nil(t, <-done)
	require.False(t, v.State().IsSubmitting)
	c.AssertNumberOfCalls(t, "SignInEmail", 1)
}

func TestSubmitIgnoresCancel(t *testing.T) {
	// Arrange
	v, c := newTestView(t)
	fill(v, "", testEmail, testPassword)

	ctx, cancel := context.WithCancel(context.Background())
	c.On("SignInEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			require.Nil(t, args.Get(0).(context.Context).Err())
		}).
		Return(authclient.Result{Data: &authclient.AuthData{}}, nil).
		Once()

	// Act
	err := v.Submit(ctx)

	// Assert
	require.Nil(t, err)
	require.Empty(t, v.State().ErrorMessage)
}

func TestSubmitAuthenticatesThroughSession(t *testing.T) {
	// Arrange
	v, c := newTestView(t)
	fill(v, "", testEmail, testPassword)
	c.On("SignInEmail", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			c.signIn()
			require.Nil(t, c.store.Refresh(context.Background()))
		}).
		Return(authclient.Result{Data: &authclient.AuthData{}}, nil).
		Once()

	require.Equal(t, authview.PhaseUnauthenticated, v.State().Phase)

	// Act
	require.Nil(t, v.Submit(context.Background()))

	// Assert
	s := v.State()
	require.Equal(t, authview.PhaseAuthenticated, s.Phase)
	require.Equal(t, testEmail, s.UserEmail())
}

func TestSignOut(t *testing.T) {
	// Arrange
	v, c := newTestView(t)
	c.signIn()
	require.Nil(t, c.store.Refresh(context.Background()))
	require.Equal(t, authview.PhaseAuthenticated, v.State().Phase)

	c.On("SignOut", mock.Anything).
		Run(func(mock.Arguments) {
			c.mu.Lock()
			c.current = nil
			c.mu.Unlock()
			require.Nil(t, c.store.Refresh(context.Background()))
		}).
		Return(nil).
		Once()

	// Act
	v.SignOut(context.Background())

	// Assert
	require.Equal(t, authview.PhaseUnauthenticated, v.State().Phase)

	// Arrange
	c.signIn()
	require.Nil(t, c.store.Refresh(context.Background()))
	c.On("SignOut", mock.Anything).Return(errors.New("boom")).Once()

	// Act
	v.SignOut(context.Background())

	// Assert
	s := v.State()
	require.Equal(t, authview.PhaseAuthenticated, s.Phase)
	require.Empty(t, s.ErrorMessage)
	c.AssertExpectations(t)
}

func TestAwaitSettled(t *testing.T) {
	// Arrange
	c := newMockClient()
	v := authview.New(c, authview.WithLogger(quietLogger()))
	v.Mount()
	defer v.Unmount()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	// Act
	err := v.AwaitSettled(ctx)

	// Assert
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Arrange
	go c.store.Refresh(context.Background())

	// Act
	err = v.AwaitSettled(context.Background())

	// Assert
	require.Nil(t, err)
	require.Equal(t, authview.PhaseUnauthenticated, v.State().Phase)
}

func TestStateNeverHoldsPassword(t *testing.T) {
	// Arrange
	v, _ := newTestView(t)
	fill(v, testName, testEmail, testPassword)

	// Act
	s := v.State()

	// Assert
	require.NotContains(t, []string{s.Name, s.Email, s.ErrorMessage}, testPassword)
}
