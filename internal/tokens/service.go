package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/mux"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/logr"
)

var errInvalidKind = errors.New("token is not a user session token")

type (
	Service struct {
		logr.Logger

		key        jwk.Key
		middleware mux.MiddlewareFunc
	}

	Options struct {
		logr.Logger

		// Secret signs session tokens
		Secret []byte
		// GetUser retrieves the user named in a session token.
		GetUser SubjectGetter
	}

	// SubjectGetter retrieves the subject with the given username.
	SubjectGetter func(ctx context.Context, username string) (authz.Subject, error)
)

func NewService(opts Options) (*Service, error) {
	key, err := jwk.FromRaw(opts.Secret)
	if err != nil {
		return nil, fmt.Errorf("constructing session signing key: %w", err)
	}
	svc := Service{
		Logger: opts.Logger,
		key:    key,
	}
	svc.middleware = newMiddleware(middlewareOptions{
		Logger:  opts.Logger,
		key:     key,
		getUser: opts.GetUser,
	})
	return &svc, nil
}

// Middleware authenticates requests, adding the user to the request context.
func (a *Service) Middleware() mux.MiddlewareFunc { return a.middleware }

func (a *Service) AddHandlers(r *mux.Router) {
	r.HandleFunc(startSessionPath, a.startSessionHandler).Methods("GET")
}
