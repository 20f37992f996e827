package models

import "strings"

// Session is the persisted client-side record of authentication and profile
// state. Empty strings mean absent.
type Session struct {
	AccessToken  string `json:"access" yaml:"access"`
	RefreshToken string `json:"refresh" yaml:"refresh"`
	Username     string `json:"username" yaml:"username"`
	UserID       string `json:"user_id" yaml:"user_id"`
	FirstName    string `json:"first_name" yaml:"first_name"`
	ScreenName   string `json:"screen_name" yaml:"screen_name"`
	Phone        string `json:"phone" yaml:"phone"`
}

// DisplayName picks first name, screen name, username, phone, then "User".
func (s Session) DisplayName() string {
	for _, v := range []string{s.FirstName, s.ScreenName, s.Username, s.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return "User"
}

// CheckMobileResponse is returned by the existence check.
type CheckMobileResponse struct {
	Exists bool `json:"exists"`
}

// VerifyOTPRequest is the verify-OTP request body
type VerifyOTPRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

// VerifyOTPResponse carries the tokens and optional profile fields issued
// after a successful OTP check.
type VerifyOTPResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Access     string     `json:"access"`
	Refresh    string     `json:"refresh"`
	Username   string     `json:"username"`
	UserID     FlexString `json:"user_id"`
	FirstName  string     `json:"first_name,omitempty"`
	ScreenName string     `json:"screen_name,omitempty"`
	Phone      string     `json:"phone,omitempty"`
}

// Profile is the /users/me/ read model.
type Profile struct {
	FirstName  string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	ScreenName string `json:"screen_name,omitempty" yaml:"screen_name,omitempty"`
	Phone      string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Gender     string `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// SignupProfile is collected on the signup screen and sent once, right after
// the OTP is verified.
type SignupProfile struct {
	FirstName  string `json:"first_name"`
	Email      string `json:"email"`
	Gender     string `json:"gender"`
	InviteCode string `json:"invite_code"`
}

// Headers implements format.Tabular
func (p Profile) Headers() []string {
	return []string{"Property", "Value"}
}

// Rows implements format.Tabular
func (p Profile) Rows() [][]string {
	return [][]string{
		{"First name", p.FirstName},
		{"Last name", p.LastName},
		{"Screen name", p.ScreenName},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Gender", p.Gender},
	}
}
