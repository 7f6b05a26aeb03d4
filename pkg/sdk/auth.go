// pkg/sdk/auth.go
package sdk

import (
	"context"
	"errors"
	"net/http"
)

// Default user-facing messages used when the API does not supply one.
const (
	msgLoginFailed          = "Login failed"
	msgSignupFailed         = "Signup failed"
	msgLogoutFailed         = "Logout failed"
	msgInvalidLoginResponse = "Invalid login response"
	msgInvalidCredentials   = "Invalid email or password"
)

// AuthService talks to the API's account endpoints and reports every result as
// an Outcome. Transport errors never escape as raw errors.
type AuthService struct {
	client *Client
}

// NewAuthService binds an AuthService to an SDK client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

type credentialsEnvelope struct {
	User credentialsPayload `json:"user"`
}

type credentialsPayload struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

type loginResponse struct {
	Status struct {
		Token string `json:"token"`
		Data  struct {
			User *UserSummary `json:"user"`
		} `json:"data"`
	} `json:"status"`
}

// Login exchanges credentials for a session.
//
// Rejected credentials produce a failure whose Cause is a *ValidationError.
// A 2xx response lacking either the token or the user is a *ProtocolError;
// a session is only returned when both halves are present.
func (s *AuthService) Login(ctx context.Context, email, password string) Outcome[Session] {
	req := credentialsEnvelope{User: credentialsPayload{Email: email, Password: password}}

	var resp loginResponse
	if err := s.client.Do(ctx, http.MethodPost, "/login", JSONBody(req), &resp, WithoutAuth()); err != nil {
		err = rejectedCredentials(err)
		return Fail[Session](describe(err, msgLoginFailed), err)
	}

	token := resp.Status.Token
	user := resp.Status.Data.User
	switch {
	case token == "" && user == nil:
		return Fail[Session](msgInvalidLoginResponse, &ProtocolError{Reason: "login response has neither token nor user"})
	case token == "":
		return Fail[Session](msgInvalidLoginResponse, &ProtocolError{Reason: "login response is missing the token"})
	case user == nil:
		return Fail[Session](msgInvalidLoginResponse, &ProtocolError{Reason: "login response is missing the user"})
	}

	return Succeed(Session{Token: token, User: user})
}

// Signup registers an account. It does not establish a session; callers log
// in separately.
func (s *AuthService) Signup(ctx context.Context, email, password, confirmation string) Outcome[struct{}] {
	req := credentialsEnvelope{User: credentialsPayload{
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	}}

	if err := s.client.Do(ctx, http.MethodPost, "/signup", JSONBody(req), nil, WithoutAuth()); err != nil {
		err = asValidation(err)
		return Fail[struct{}](describe(err, msgSignupFailed), err)
	}
	return Succeed(struct{}{})
}

// Logout asks the server to invalidate the current token. It is best effort:
// callers clear their local session whatever the outcome.
func (s *AuthService) Logout(ctx context.Context) Outcome[struct{}] {
	if err := s.client.Do(ctx, http.MethodDelete, "/logout", nil, nil); err != nil {
		return Fail[struct{}](describe(err, msgLogoutFailed), err)
	}
	return Succeed(struct{}{})
}

// ValidateToken asks the server whether token is still valid. Any failure
// (network, non-2xx, malformed or missing "valid" field) reports false.
func (s *AuthService) ValidateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	var resp struct {
		Valid *bool `json:"valid"`
	}
	if err := s.client.Do(ctx, http.MethodGet, "/validate_token", nil, &resp, WithBearer(token)); err != nil {
		return false
	}
	return resp.Valid != nil && *resp.Valid
}

// rejectedCredentials turns 401/422 login responses into a ValidationError.
func rejectedCredentials(err error) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	if httpErr.Status != http.StatusUnauthorized && httpErr.Status != http.StatusUnprocessableEntity {
		return err
	}
	msg := httpErr.APIMessage()
	if msg == "" {
		msg = msgInvalidCredentials
	}
	return &ValidationError{Message: msg, Fields: httpErr.FieldErrors()}
}

// describe picks the user-facing message for err: the API's own message when
// one was sent, validation text for field errors, fallback otherwise.
func describe(err error, fallback string) string {
	var (
		validationErr *ValidationError
		httpErr       *HTTPError
		networkErr    *NetworkError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &httpErr):
		if msg := httpErr.APIMessage(); msg != "" {
			return msg
		}
		return fallback
	case errors.As(err, &networkErr):
		return fallback + ": server unreachable"
	default:
		return fallback
	}
}
