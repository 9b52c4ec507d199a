package auth

import (
	"fmt"
	"strings"
)

// AuthError is the single error kind surfaced by the token exchange. It
// covers a failing auth response, a transport failure, and a malformed
// success body. The response body, when one was received, is carried
// verbatim for diagnostics.
type AuthError struct {
	// Status is the HTTP status code of the auth response, 0 when the
	// request never produced one.
	Status int

	// Body is the verbatim response body.
	Body string

	// Err is the underlying transport or parse error, if any.
	Err error
}

func (e *AuthError) Error() string {
	var sb strings.Builder
	sb.WriteString("personio auth failed")
	if e.Status != 0 {
		fmt.Fprintf(&sb, ": status %d", e.Status)
	}
	if e.Body != "" {
		fmt.Fprintf(&sb, ", response was %q", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
