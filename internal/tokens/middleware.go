package tokens

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/http/html"
	"github.com/supplychain-resilience/scr/internal/logr"
)

// unprotectedPrefixes are paths that do not require a session.
var unprotectedPrefixes = []string{
	"/static/",
	"/healthz",
	"/metrics",
	startSessionPath,
}

type middlewareOptions struct {
	logr.Logger

	key     jwk.Key
	getUser SubjectGetter
}

// newMiddleware constructs middleware that verifies the session cookie and
// adds the user it names to the request context.
func newMiddleware(opts middlewareOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range unprotectedPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			subj, err := authenticate(r, opts)
			if err != nil {
				opts.V(2).Info("unauthenticated request", "path", r.URL.Path, "error", err.Error())
				html.Error(r, w, internal.ErrUnauthorized)
				return
			}
			ctx := authz.AddSubjectToContext(r.Context(), subj)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, opts middlewareOptions) (authz.Subject, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, err
	}
	username, err := parseToken(opts.key, userSessionKind, []byte(cookie.Value))
	if err != nil {
		return nil, err
	}
	return opts.getUser(r.Context(), username)
}
