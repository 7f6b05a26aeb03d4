package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terraconstructs/postboard/internal/authstate"
)

var sessionStates = []string{
	authstate.Loading{}.String(),
	authstate.Unauthenticated{}.String(),
	authstate.Authenticated{}.String(),
}

// Metrics collects gateway request and session metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	state           *prometheus.GaugeVec
}

// NewMetrics registers the gateway collectors on reg. The session gauge starts
// in the loading state.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postboard_gateway_requests_total",
			Help: "Gateway requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postboard_gateway_request_duration_seconds",
			Help:    "Gateway request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postboard_session_transitions_total",
			Help: "Session state transitions by target state.",
		}, []string{"state"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postboard_session_state",
			Help: "1 for the current session state, 0 otherwise.",
		}, []string{"state"}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.transitions, m.state)
	m.setState(authstate.Loading{})

	return m
}

// RecordTransition counts a session transition and moves the state gauge.
// Its signature fits Manager.Subscribe.
func (m *Metrics) RecordTransition(st authstate.State) {
	m.transitions.WithLabelValues(st.String()).Inc()
	m.setState(st)
}

func (m *Metrics) setState(st authstate.State) {
	current := st.String()
	for _, s := range sessionStates {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(s).Set(v)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records every request against its matched route pattern, so
// /api/posts/1 and /api/posts/2 share one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
