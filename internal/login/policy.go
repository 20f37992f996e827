package login

import (
	"fmt"
	"strings"
)

// ExistenceCheckUnavailablePolicy decides what happens when the account
// existence check cannot reach the gateway.
type ExistenceCheckUnavailablePolicy string

const (
	// AssumeNewUser continues to the signup screen.
	AssumeNewUser ExistenceCheckUnavailablePolicy = "assume_new_user"
	// FailClosed keeps the user on the mobile screen and returns the error.
	FailClosed ExistenceCheckUnavailablePolicy = "fail"
)

// ParsePolicy maps a configuration value onto a policy. Empty means AssumeNewUser.
func ParsePolicy(s string) (ExistenceCheckUnavailablePolicy, error) {
	switch ExistenceCheckUnavailablePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AssumeNewUser:
		return AssumeNewUser, nil
	case FailClosed:
		return FailClosed, nil
	default:
		return "", fmt.Errorf("unknown existence check policy %q (expected %s or %s)", s, AssumeNewUser, FailClosed)
	}
}
