package sdk

import "time"

// UserSummary identifies the account a session belongs to.
type UserSummary struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// SameAs reports whether both summaries refer to the same account.
func (u *UserSummary) SameAs(other *UserSummary) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID == other.ID
}

// Label returns the display name when set, falling back to the email address.
func (u *UserSummary) Label() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Session is the credential pair held by the client for the current login.
// Token and User are persisted and cleared together.
type Session struct {
	Token string
	User  *UserSummary
}

// IsZero reports whether neither half of the session is present.
func (s Session) IsZero() bool {
	return s.Token == "" && s.User == nil
}

// Complete reports whether both the token and the user are present.
func (s Session) Complete() bool {
	return s.Token != "" && s.User != nil
}

// Partial reports a session holding a token without a user or a user without a token.
func (s Session) Partial() bool {
	return !s.IsZero() && !s.Complete()
}

// ExpiresAt returns the token's exp claim when the token is a JWT carrying one.
// The value is informational only; expiry is enforced by the server.
func (s Session) ExpiresAt() (time.Time, bool) {
	return TokenExpiry(s.Token)
}
