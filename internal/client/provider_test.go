package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/logging"
	"github.com/terraconstructs/postboard/internal/session"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

func TestProvider_EphemeralUsesMemoryStore(t *testing.T) {
	p := NewProvider(Options{APIURL: "http://localhost:3000", Ephemeral: true, Logger: logging.Discard()})

	store, err := p.Store()
	require.NoError(t, err)
	_, ok := store.(*session.MemoryStore)
	assert.True(t, ok)

	again, err := p.Store()
	require.NoError(t, err)
	assert.Same(t, store, again)
}

func TestProvider_FileStoreScopedToOrigin(t *testing.T) {
	dir := t.TempDir()
	p := NewProvider(Options{APIURL: "https://api.example.com", SessionDir: dir, Logger: logging.Discard()})

	store, err := p.Store()
	require.NoError(t, err)
	fs, ok := store.(*session.FileStore)
	require.True(t, ok)
	assert.Contains(t, fs.Dir(), "https_api.example.com_443")
}

func TestProvider_InvalidURL(t *testing.T) {
	p := NewProvider(Options{APIURL: "not a url", SessionDir: t.TempDir(), Logger: logging.Discard()})

	_, err := p.Manager()
	assert.Error(t, err)
	_, err = p.SDKClient()
	assert.Error(t, err)
}

func TestProvider_ClientSendsStoredToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"pagy":{"page":1,"items":10,"pages":1,"count":0}}`))
	}))
	defer srv.Close()

	p := NewProvider(Options{APIURL: srv.URL, Ephemeral: true, Logger: logging.Discard()})
	store, err := p.Store()
	require.NoError(t, err)
	require.NoError(t, store.Save(sdk.Session{Token: "tok", User: &sdk.UserSummary{ID: 1, Email: "a@b.c"}}))

	c, err := p.SDKClient()
	require.NoError(t, err)
	_, err = c.ListPosts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestProvider_ResolvedManagerWithoutSession(t *testing.T) {
	p := NewProvider(Options{APIURL: "http://127.0.0.1:1", Ephemeral: true, Timeout: time.Second, Logger: logging.Discard()})

	mgr, state, err := p.ResolvedManager(context.Background())
	require.NoError(t, err)
	assert.IsType(t, authstate.Unauthenticated{}, state)

	again, err := p.Manager()
	require.NoError(t, err)
	assert.Same(t, mgr, again)
}
