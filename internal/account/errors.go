package account

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAccount is matched by every NoAccountError.
var ErrNoAccount = errors.New("no account specified")

// NoAccountError reports that no account could be determined for a call.
type NoAccountError struct {
	// Available lists the account slugs the token can reach.
	Available []string
	// Cause is set when the identity lookup itself failed.
	Cause error
}

func (e *NoAccountError) Error() string {
	const hint = "Pass the account argument or set " + EnvAccount + "."

	switch {
	case e.Cause != nil:
		return fmt.Sprintf("No account specified and auto-detection failed: %v. %s", e.Cause, hint)
	case len(e.Available) == 0:
		return "No account specified and the access token has no accounts. " + hint
	default:
		return fmt.Sprintf("No account specified. Available accounts: %s. %s", strings.Join(e.Available, ", "), hint)
	}
}

// Is makes errors.Is(err, ErrNoAccount) true.
func (e *NoAccountError) Is(target error) bool {
	return target == ErrNoAccount
}

func (e *NoAccountError) Unwrap() error {
	return e.Cause
}

// UnknownAccountError reports a slug that the token cannot reach.
type UnknownAccountError struct {
	Slug      string
	Available []string
}

func (e *UnknownAccountError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("Account %s was not found and the access token has no accounts.", e.Slug)
	}
	return fmt.Sprintf("Account %s was not found. Available accounts: %s.", e.Slug, strings.Join(e.Available, ", "))
}
