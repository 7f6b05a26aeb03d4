package sdk_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

func TestHTTPError_APIMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"error":"nope"}`, want: "nope"},
		{body: `{"message":"msg"}`, want: "msg"},
		{body: `{"status":{"message":"nested"}}`, want: "nested"},
		{body: `{"title":["can't be blank"]}`, want: ""},
		{body: `<html>`, want: ""},
	}
	for _, tt := range tests {
		e := &sdk.HTTPError{Status: 422, Body: []byte(tt.body)}
		assert.Equal(t, tt.want, e.APIMessage(), tt.body)
	}
}

func TestHTTPError_FieldErrors(t *testing.T) {
	e := &sdk.HTTPError{Status: 422, Body: []byte(`{"error":"x","title":["a","b"],"body":"single","empty":[]}`)}
	assert.Equal(t, map[string][]string{"title": {"a", "b"}, "body": {"single"}}, e.FieldErrors())

	assert.Nil(t, (&sdk.HTTPError{Body: []byte(`{"error":"x"}`)}).FieldErrors())
}

func TestValidationError(t *testing.T) {
	v := &sdk.ValidationError{Fields: map[string][]string{"title": {"can't be blank"}, "body": {"is too short"}}}
	assert.Equal(t, []string{"body is too short", "title can't be blank"}, v.Messages())
	assert.Equal(t, "body is too short; title can't be blank", v.Error())

	assert.Equal(t, "validation failed", (&sdk.ValidationError{}).Error())
	assert.Equal(t, "explicit", (&sdk.ValidationError{Message: "explicit", Fields: v.Fields}).Error())
}

func TestOutcome(t *testing.T) {
	ok := sdk.Succeed(42)
	assert.True(t, ok.Success())
	assert.NoError(t, ok.Err())

	cause := &sdk.NetworkError{Op: "GET /", Err: errors.New("refused")}
	failed := sdk.Fail[int]("Login failed", fmt.Errorf("wrapped: %w", cause))
	assert.False(t, failed.Success())
	assert.EqualError(t, failed.Err(), "Login failed")

	var netErr *sdk.NetworkError
	assert.True(t, errors.As(failed.Err(), &netErr))

	assert.Equal(t, "boom", sdk.Fail[int]("", errors.New("boom")).Error)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	got, ok := sdk.TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = sdk.TokenExpiry(noExp)
	assert.False(t, ok)

	_, ok = sdk.TokenExpiry("opaque-token")
	assert.False(t, ok)
	_, ok = sdk.TokenExpiry("")
	assert.False(t, ok)

	s := sdk.Session{Token: signed, User: &sdk.UserSummary{ID: 1}}
	_, ok = s.ExpiresAt()
	assert.True(t, ok)
}

func TestSessionCompleteness(t *testing.T) {
	user := &sdk.UserSummary{ID: 1, Email: "a@x.io"}

	assert.True(t, sdk.Session{}.IsZero())
	assert.True(t, sdk.Session{Token: "t", User: user}.Complete())
	assert.True(t, sdk.Session{Token: "t"}.Partial())
	assert.True(t, sdk.Session{User: user}.Partial())
	assert.False(t, sdk.Session{}.Partial())

	assert.Equal(t, "a@x.io", user.Label())
	assert.Equal(t, "Ann", (&sdk.UserSummary{Email: "a@x.io", DisplayName: "Ann"}).Label())
	assert.True(t, user.SameAs(&sdk.UserSummary{ID: 1}))
	assert.False(t, user.SameAs(nil))
}
