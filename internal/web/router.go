// Package web is the local gateway served by `postctl serve`. It exposes the
// session lifecycle over HTTP and proxies post operations to the API, with
// the post routes gated by the session guard.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/guard"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// DefaultLoginPath is where unauthenticated requests to guarded routes are sent.
const DefaultLoginPath = "/login"

// DefaultAllowedOrigins are the dev-server origins allowed when none are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// SessionManager is the session lifecycle the gateway drives.
type SessionManager interface {
	State() authstate.State
	LastError() string
	Login(ctx context.Context, email, password string) sdk.Outcome[sdk.Session]
	Signup(ctx context.Context, email, password, confirmation string) sdk.Outcome[struct{}]
	Logout(ctx context.Context) error
}

// PostAPI is the subset of the SDK client the gateway proxies.
type PostAPI interface {
	ListPosts(ctx context.Context, page int) (*sdk.PostList, error)
	GetPost(ctx context.Context, id int64) (*sdk.Post, error)
	CreatePost(ctx context.Context, in sdk.PostInput) (*sdk.Post, error)
	UpdatePost(ctx context.Context, id int64, in sdk.PostInput, enc sdk.Encoding) (*sdk.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// RouterOptions controls the construction of the gateway router.
type RouterOptions struct {
	Sessions    SessionManager
	Posts       PostAPI
	Logger      *slog.Logger
	CORSOptions *cors.Options
	LoginPath   string

	// Metrics, when set, instruments every request and serves /metrics.
	Metrics *Metrics
	// RateLimiter, when set, throttles POST /api/login and /api/signup.
	RateLimiter *RateLimiter
}

// DefaultCORSOptions returns the CORS policy for a browser front end served
// from one of origins. An empty list falls back to DefaultAllowedOrigins.
func DefaultCORSOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the gateway: shared middleware, CORS, the open session
// routes and the guarded post routes.
func NewRouter(opts RouterOptions) chi.Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	corsCfg := DefaultCORSOptions(DefaultAllowedOrigins)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	h := &handlers{sessions: opts.Sessions, posts: opts.Posts, logger: opts.Logger}

	r.Get("/healthz", h.health)
	r.Get(opts.LoginPath, h.loginPage)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.session)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(opts.RateLimiter.Middleware)
			}
			r.Post("/login", h.login)
			r.Post("/signup", h.signup)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Middleware(opts.Sessions, opts.LoginPath))

			r.Get("/posts", h.listPosts)
			r.Post("/posts", h.createPost)
			r.Get("/posts/{id}", h.getPost)
			r.Put("/posts/{id}", h.updatePost)
			r.Delete("/posts/{id}", h.deletePost)
		})
	})

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
