package authview_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/authclient"
	"github.com/xy-planning-network/trailhead/authview"
)

func TestModeValid(t *testing.T) {
	require.Nil(t, authview.ModeSignIn.Valid())
	require.Nil(t, authview.ModeSignUp.Valid())
	require.ErrorIs(t, authview.Mode("").Valid(), trailhead.ErrNotValid)
	require.ErrorIs(t, authview.Mode("SIGN-IN").Valid(), trailhead.ErrNotValid)
	require.Equal(t, authview.ModeSignUp, authview.ModeSignIn.Toggle())
	require.Equal(t, authview.ModeSignIn, authview.ModeSignUp.Toggle())
}

func TestViewStateCopy(t *testing.T) {
	for _, tc := range []struct {
		name     string
		state    authview.ViewState
		title    string
		subtitle string
		submit   string
		prompt   string
		toggle   string
	}{
		{
			"Sign-In",
			authview.ViewState{Mode: authview.ModeSignIn},
			"Sign in", "Enter your credentials to continue", "Sign in", "Don't have an account?", "Sign up",
		},
		{
			"Sign-Up",
			authview.ViewState{Mode: authview.ModeSignUp},
			"Create an account", "Enter your details to get started", "Sign up", "Already have an account?", "Sign in",
		},
		{
			"Submitting",
			authview.ViewState{Mode: authview.ModeSignUp, IsSubmitting: true},
			"Create an account", "Enter your details to get started", "Loading...", "Already have an account?", "Sign in",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.title, tc.state.Title())
			require.Equal(t, tc.subtitle, tc.state.Subtitle())
			require.Equal(t, tc.submit, tc.state.SubmitLabel())
			require.Equal(t, tc.prompt, tc.state.TogglePrompt())
			require.Equal(t, tc.toggle, tc.state.ToggleLabel())
		})
	}
}

func TestViewStateJSON(t *testing.T) {
	// Arrange
	s := authview.ViewState{
		Phase: authview.PhaseAuthenticated,
		Mode:  authview.ModeSignIn,
		Email: testEmail,
		User:  &authclient.User{ID: "usr_1", Email: testEmail},
	}

	// Act
	b, err := json.Marshal(s)

	// Assert
	require.Nil(t, err)

	m := make(map[string]any)
	require.Nil(t, json.Unmarshal(b, &m))
	require.Equal(t, "authenticated", m["phase"])
	require.Equal(t, "sign-in", m["mode"])
	require.NotContains(t, m, "password")
	require.NotContains(t, m, "errorMessage")
	require.Equal(t, testEmail, s.UserEmail())
	require.Empty(t, authview.ViewState{}.UserEmail())
}

func TestViewStateLogData(t *testing.T) {
	// Arrange
	s := authview.ViewState{
		Phase:        authview.PhaseUnauthenticated,
		Mode:         authview.ModeSignUp,
		Name:         "Edmund Husserl",
		Email:        "husserl@example.com",
		ErrorMessage: "User already exists",
	}

	// Act
	actual := s.LogData()

	// Assert
	require.Equal(t, map[string]any{
		"phase":        "unauthenticated",
		"mode":         "sign-up",
		"isSubmitting": false,
		"errorMessage": "User already exists",
	}, actual)

	// Arrange
	s.ErrorMessage = ""
	s.Phase = authview.PhaseLoading

	// Act + Assert
	require.NotContains(t, s.LogData(), "errorMessage")
	require.Equal(t, "loading", s.LogData()["phase"])
}
