package authview

import "github.com/xy-planning-network/trailhead/authclient"

// Phase is what a View renders as.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseAuthenticated
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// formState is the mutable state a View owns.
type formState struct {
	mode         Mode
	name         string
	email        string
	password     string
	errorMessage string
	isSubmitting bool
}

// ViewState is a snapshot of a View for rendering.
// The password is never part of it.
type ViewState struct {
	Phase        Phase            `json:"phase"`
	Mode         Mode             `json:"mode"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	IsSubmitting bool             `json:"isSubmitting"`
	User         *authclient.User `json:"user,omitempty"`
}

func (s ViewState) IsSignUp() bool { return s.Mode == ModeSignUp }

func (s ViewState) Title() string {
	if s.IsSignUp() {
		return "Create an account"
	}
	return "Sign in"
}

func (s ViewState) Subtitle() string {
	if s.IsSignUp() {
		return "Enter your details to get started"
	}
	return "Enter your credentials to continue"
}

// SubmitLabel is the text of the submit button, "Loading..." while submitting.
func (s ViewState) SubmitLabel() string {
	switch {
	case s.IsSubmitting:
		return "Loading..."
	case s.IsSignUp():
		return "Sign up"
	default:
		return "Sign in"
	}
}

func (s ViewState) TogglePrompt() string {
	if s.IsSignUp() {
		return "Already have an account?"
	}
	return "Don't have an account?"
}

func (s ViewState) ToggleLabel() string {
	if s.IsSignUp() {
		return "Sign in"
	}
	return "Sign up"
}

// UserEmail is the email of the signed in user, empty when signed out.
func (s ViewState) UserEmail() string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}

// LogData is what of s is safe to log: neither the name nor the email typed appear.
func (s ViewState) LogData() map[string]any {
	m := map[string]any{
		"phase":        s.Phase.String(),
		"mode":         s.Mode.String(),
		"isSubmitting": s.IsSubmitting,
	}

	if s.ErrorMessage != "" {
		m["errorMessage"] = s.ErrorMessage
	}

	return m
}
