package guard

import (
	"context"
	"net/http"

	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

type sessionContextKey struct{}

// SessionFromContext returns the session the middleware admitted the request with.
func SessionFromContext(ctx context.Context) (sdk.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(sdk.Session)
	return s, ok
}

// Middleware gates HTTP routes on the auth state.
//
// Loading answers 503 with Retry-After and never redirects, so a valid
// session is not bounced to the login page while it is being checked.
// Unauthenticated redirects to loginPath. Authenticated passes the request on
// with the session in its context.
func Middleware(states StateReader, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := states.State()

			switch Decide(state) {
			case ShowPlaceholder:
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"loading"}`))
			case RedirectToLogin:
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			case RenderProtected:
				auth := state.(authstate.Authenticated)
				ctx := context.WithValue(r.Context(), sessionContextKey{}, auth.Session())
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}
