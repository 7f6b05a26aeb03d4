package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/logging"
	"github.com/terraconstructs/postboard/internal/session"
)

func TestMetrics_SessionState(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.state.WithLabelValues("loading")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.state.WithLabelValues("authenticated")))

	m.RecordTransition(authstate.Unauthenticated{})
	m.RecordTransition(authstate.Authenticated{})
	m.RecordTransition(authstate.Unauthenticated{})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.state.WithLabelValues("loading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.state.WithLabelValues("unauthenticated")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.state.WithLabelValues("authenticated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("authenticated")))
}

func TestMetrics_FollowsManager(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	mgr := authstate.NewManager(session.NewMemoryStore(loggedIn), &fakeAuth{valid: true}, logging.Discard())
	cancel := mgr.Subscribe(m.RecordTransition)
	defer cancel()

	mgr.Start(t.Context())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.state.WithLabelValues("authenticated")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.state.WithLabelValues("loading")))
}

func TestRouter_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	mgr := authstate.NewManager(session.NewMemoryStore(loggedIn), &fakeAuth{valid: true}, logging.Discard())
	mgr.Start(t.Context())

	srv := httptest.NewServer(NewRouter(RouterOptions{
		Sessions: mgr,
		Posts:    newFakePosts(),
		Logger:   logging.Discard(),
		Metrics:  m,
	}))
	t.Cleanup(srv.Close)
	f := &fixture{srv: srv, mgr: mgr}

	f.do(t, http.MethodGet, "/api/posts/1", "", nil)
	f.do(t, http.MethodGet, "/api/posts/2", "", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/posts/{id}", "200")))

	resp := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "postboard_gateway_requests_total"))
	assert.True(t, strings.Contains(string(body), "postboard_session_state"))
}
