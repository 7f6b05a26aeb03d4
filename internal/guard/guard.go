// Package guard gates protected commands and routes on the authentication state.
package guard

import (
	"fmt"

	"github.com/terraconstructs/postboard/internal/authstate"
)

// Decision is what a protected surface does for a given state.
type Decision int

const (
	// ShowPlaceholder renders a neutral placeholder. No redirect decision is
	// made while the session is still being resolved.
	ShowPlaceholder Decision = iota
	// RedirectToLogin sends the user to log in.
	RedirectToLogin
	// RenderProtected renders the protected content.
	RenderProtected
)

func (d Decision) String() string {
	switch d {
	case ShowPlaceholder:
		return "placeholder"
	case RedirectToLogin:
		return "redirect-to-login"
	case RenderProtected:
		return "render"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Decide maps every auth state to exactly one decision.
func Decide(state authstate.State) Decision {
	switch state.(type) {
	case authstate.Loading:
		return ShowPlaceholder
	case authstate.Unauthenticated:
		return RedirectToLogin
	case authstate.Authenticated:
		return RenderProtected
	}
	panic(fmt.Sprintf("guard: unknown auth state %T", state))
}

// StateReader is the part of the session manager the guard reads.
type StateReader interface {
	State() authstate.State
}
