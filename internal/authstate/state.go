// Package authstate owns the client's authentication state machine.
//
// The state is one of exactly three variants:
//
//	Loading          startup validation has not finished
//	Unauthenticated  no usable session
//	Authenticated    a complete, validated session
//
// Loading is left once and never re-entered. Authenticated always carries both
// a token and a user.
package authstate

import (
	"errors"

	"github.com/terraconstructs/postboard/pkg/sdk"
)

// State is implemented only by Loading, Unauthenticated and Authenticated.
type State interface {
	authState()
	String() string
}

// Loading means the persisted session has not been resolved yet.
type Loading struct{}

// Unauthenticated means there is no usable session.
type Unauthenticated struct{}

// Authenticated holds a complete session.
type Authenticated struct {
	session sdk.Session
}

func (Loading) authState()         {}
func (Unauthenticated) authState() {}
func (Authenticated) authState()   {}

func (Loading) String() string         { return "loading" }
func (Unauthenticated) String() string { return "unauthenticated" }
func (Authenticated) String() string   { return "authenticated" }

// ErrPartialSession is returned when building an Authenticated state from a
// session missing its token or its user.
var ErrPartialSession = errors.New("session must carry both a token and a user")

// NewAuthenticated builds the Authenticated variant. Partial sessions are rejected.
func NewAuthenticated(s sdk.Session) (Authenticated, error) {
	if !s.Complete() {
		return Authenticated{}, ErrPartialSession
	}
	u := *s.User
	return Authenticated{session: sdk.Session{Token: s.Token, User: &u}}, nil
}

// Session returns a copy of the authenticated session.
func (a Authenticated) Session() sdk.Session {
	u := *a.session.User
	return sdk.Session{Token: a.session.Token, User: &u}
}

// User returns a copy of the signed-in user.
func (a Authenticated) User() *sdk.UserSummary {
	u := *a.session.User
	return &u
}

// IsResolved reports whether s is past Loading.
func IsResolved(s State) bool {
	_, loading := s.(Loading)
	return !loading
}
