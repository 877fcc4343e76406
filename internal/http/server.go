package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/csrf"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/http/html"
	"github.com/supplychain-resilience/scr/internal/logr"
)

const (
	// CSRFFieldName is the name of the hidden form input carrying the
	// anti-forgery token.
	CSRFFieldName = "csrfmiddlewaretoken"

	// shutdownTimeout is the time given for outstanding requests to finish
	// before shutdown.
	shutdownTimeout = 1 * time.Second
)

var healthzPayload, _ = json.Marshal(struct {
	Version string
}{
	Version: internal.Version,
})

type (
	// ServerConfig is the http server config
	ServerConfig struct {
		SSL                  bool
		CertFile, KeyFile    string
		EnableRequestLogging bool
		// SecureCookies sets the secure attribute on the CSRF cookie.
		SecureCookies bool
		// CSRFKey is the 32 byte key authenticating anti-forgery tokens.
		CSRFKey []byte

		Handlers   []Handlers
		Middleware []mux.MiddlewareFunc
	}

	// Handlers add routes to the router.
	Handlers interface {
		AddHandlers(*mux.Router)
	}

	// Server is the http server for scrd
	Server struct {
		logr.Logger
		ServerConfig

		server *http.Server
	}
)

// NewServer constructs the http server for scrd
func NewServer(logger logr.Logger, cfg ServerConfig) (*Server, error) {
	if cfg.SSL {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, fmt.Errorf("must provide both --cert-file and --key-file")
		}
	}
	return &Server{
		Logger:       logger,
		ServerConfig: cfg,
		server:       &http.Server{Handler: NewRouter(logger, cfg)},
	}, nil
}

// NewRouter constructs the router serving every route.
func NewRouter(logger logr.Logger, cfg ServerConfig) *mux.Router {
	r := mux.NewRouter()

	// Catch panics and return 500s
	r.Use(gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true)))

	// Redirect paths without a trailing slash to path with, e.g. /medical ->
	// /medical/.
	r.StrictSlash(true)

	html.AddStaticHandler(r)

	// Prometheus metrics
	r.HandleFunc("/metrics", promhttp.Handler().ServeHTTP)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-type", "application/json")
		w.Write(healthzPayload)
	})

	// Subrouter for service routes
	svcRouter := r.NewRoute().Subrouter()
	svcRouter.Use(csrfMiddleware(logger, cfg))
	// Subject service routes to provided middleware, verifying sessions.
	svcRouter.Use(cfg.Middleware...)

	// Add handlers for each service
	for _, h := range cfg.Handlers {
		h.AddHandlers(svcRouter)
	}

	// Optionally log every request
	if cfg.EnableRequestLogging {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				m := httpsnoop.CaptureMetrics(next, w, r)
				logger.Info("request",
					"duration", fmt.Sprintf("%dms", m.Duration.Milliseconds()),
					"status", m.Code,
					"method", r.Method,
					"path", fmt.Sprintf("%s?%s", r.URL.Path, r.URL.RawQuery))
			})
		})
	}
	return r
}

// csrfMiddleware rejects unsafe requests lacking a valid anti-forgery token.
func csrfMiddleware(logger logr.Logger, cfg ServerConfig) mux.MiddlewareFunc {
	protect := csrf.Protect(cfg.CSRFKey,
		csrf.FieldName(CSRFFieldName),
		csrf.Secure(cfg.SecureCookies),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Error(csrf.FailureReason(r), "rejected request", "path", r.URL.Path)
			html.Error(r, w, internal.ErrAccessNotPermitted)
		})),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// Start starts serving http traffic on the given listener and waits until the server exits due to
// error or the context is cancelled.
func (s *Server) Start(ctx context.Context, ln net.Listener) (err error) {
	errch := make(chan error)

	go func() {
		if s.SSL {
			errch <- s.server.ServeTLS(ln, s.CertFile, s.KeyFile)
		} else {
			errch <- s.server.Serve(ln)
		}
	}()

	s.Info("started server", "address", ln.Addr().String(), "ssl", s.SSL)

	// Block until server stops listening or context is cancelled.
	select {
	case err := <-errch:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Info("gracefully shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return s.server.Close()
		}

		return nil
	}
}
