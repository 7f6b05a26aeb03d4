package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

func TestClientDo_BearerFromTokenSource(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		opts     []sdk.RequestOption
		wantAuth string
	}{
		{name: "token present", token: "abc", wantAuth: "Bearer abc"},
		{name: "logged out", token: "", wantAuth: ""},
		{name: "explicit bearer overrides source", token: "abc", opts: []sdk.RequestOption{sdk.WithBearer("other")}, wantAuth: "Bearer other"},
		{name: "without auth", token: "abc", opts: []sdk.RequestOption{sdk.WithoutAuth()}, wantAuth: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got http.Header
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			c := sdk.NewClient(srv.URL, sdk.WithTokenSource(sdk.TokenFunc(func() string { return tt.token })))
			require.NoError(t, c.Do(context.Background(), http.MethodGet, "/ping", nil, nil, tt.opts...))

			assert.Equal(t, tt.wantAuth, got.Get("Authorization"))
			if tt.wantAuth == "" {
				_, present := got["Authorization"]
				assert.False(t, present)
			}
		})
	}
}

func TestClientDo_TokenReadPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	token := "first"
	c := sdk.NewClient(srv.URL, sdk.WithTokenSource(sdk.TokenFunc(func() string { return token })))

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/a", nil, nil))
	token = ""
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/b", nil, nil))
	token = "second"
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/c", nil, nil))

	assert.Equal(t, []string{"Bearer first", "", "Bearer second"}, seen)
}

func TestClientDo_Headers(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := sdk.NewClient(srv.URL+"/api/v1", sdk.WithUserAgent("postctl/test"))

	var out struct {
		OK bool `json:"ok"`
	}
	q := url.Values{"page": []string{"2"}}
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/things", sdk.JSONBody(map[string]string{"a": "b"}), &out, sdk.WithQuery(q)))

	assert.True(t, out.OK)
	assert.Equal(t, "/api/v1/things", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "postctl/test", got.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestClientDo_Errors(t *testing.T) {
	t.Run("non-2xx is HTTPError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}))
		defer srv.Close()

		err := sdk.NewClient(srv.URL).Do(context.Background(), http.MethodGet, "/", nil, nil)
		var httpErr *sdk.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, "boom", httpErr.APIMessage())
		assert.Equal(t, http.StatusInternalServerError, sdk.StatusCode(err))
	})

	t.Run("bad JSON is ProtocolError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		var out map[string]any
		err := sdk.NewClient(srv.URL).Do(context.Background(), http.MethodGet, "/", nil, &out)
		var protoErr *sdk.ProtocolError
		assert.True(t, errors.As(err, &protoErr))
	})

	t.Run("unreachable server is NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		err := sdk.NewClient(base).Do(context.Background(), http.MethodGet, "/", nil, nil)
		var netErr *sdk.NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Equal(t, "GET /", netErr.Op)
		assert.Equal(t, 0, sdk.StatusCode(err))
	})

	t.Run("empty body with out is fine", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		var out map[string]any
		assert.NoError(t, sdk.NewClient(srv.URL).Do(context.Background(), http.MethodDelete, "/", nil, &out))
	})
}
