// Package session persists the client's {token, user} pair.
package session

import (
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// Store persists a session. Only the session manager writes to it; everything
// else reads the token through the store or the manager's state.
type Store interface {
	// Save persists both halves of the session.
	Save(s sdk.Session) error
	// Load returns whatever is persisted. It never fails: unreadable or
	// malformed halves come back empty.
	Load() sdk.Session
	// Clear removes both halves. Clearing an empty store is not an error.
	Clear() error
}

// TokenSource exposes a store's token to the SDK client. The store is read on
// every call so a login or logout is visible to the very next request.
func TokenSource(s Store) sdk.TokenSource {
	return sdk.TokenFunc(func() string {
		return s.Load().Token
	})
}
