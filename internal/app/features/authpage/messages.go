package authpage

import (
	"errors"

	"github.com/dalemusser/distrohub/internal/app/system/identity"
)

// User-facing messages. Raw provider text is never shown.
const (
	MsgInvalidCredentials  = "Invalid email or password. Please check your credentials and try again."
	MsgEmailNotConfirmed   = "Please confirm your email address before logging in."
	MsgUserNotFound        = "No account found with this email. Please sign up first."
	MsgUnavailable         = "Authentication service unavailable. Please try again later."
	MsgLoginFailed         = "Login failed. Please try again."
	MsgNoSessionAfterLogin = "No active session after login. Please try again."

	MsgAlreadyRegistered = "An account with this email already exists. Please log in instead."
	MsgWeakPassword      = "Password must be at least 6 characters long."
	MsgSignupFailed      = "Signup failed. Please try again."
	MsgSignupThenLogin   = "Account created successfully! Please log in to continue."

	MsgSignOutFailed = "Failed to sign out"
)

type messageRule struct {
	substr string
	msg    string
}

// Provider message fragments, matched in order.
var (
	signInRules = []messageRule{
		{"Invalid login credentials", MsgInvalidCredentials},
		{"Email not confirmed", MsgEmailNotConfirmed},
		{"User not found", MsgUserNotFound},
	}
	signUpRules = []messageRule{
		{"already registered", MsgAlreadyRegistered},
		{"Password should be", MsgWeakPassword},
	}
)

// signInMessage maps a sign-in failure to what the user sees.
func signInMessage(err error) string {
	return mapError(err, signInRules, MsgLoginFailed)
}

// signUpMessage maps a sign-up failure to what the user sees.
func signUpMessage(err error) string {
	return mapError(err, signUpRules, MsgSignupFailed)
}

func mapError(err error, rules []messageRule, fallback string) string {
	for _, rule := range rules {
		if identity.MessageContains(err, rule.substr) {
			return rule.msg
		}
	}
	if errors.Is(err, identity.ErrUnavailable) {
		return MsgUnavailable
	}
	return fallback
}
