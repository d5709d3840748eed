package handler

import "github.com/xy-planning-network/trailhead/authview"

// AuthForm is the form posted to Submit.
type AuthForm struct {
	Mode     authview.Mode `schema:"mode" validate:"enum"`
	Name     string        `schema:"name" validate:"required_if=Mode sign-up"`
	Email    string        `schema:"email" validate:"required,email"`
	Password string        `schema:"password" validate:"required" mask:"true"`
}

// apply copies f into v as if typed.
// The name is left alone when signing in.
func (f AuthForm) apply(v *authview.View) {
	if f.Mode == authview.ModeSignUp {
		v.SetName(f.Name)
	}

	v.SetEmail(f.Email)
	v.SetPassword(f.Password)
}

// ModeForm is the form posted to Mode, carrying the mode the page showed.
type ModeForm struct {
	Mode authview.Mode `schema:"mode" validate:"omitempty,enum"`
}
