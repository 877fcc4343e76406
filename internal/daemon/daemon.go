// Package daemon configures and starts the scrd daemon and its subsystems.
package daemon

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"

	"github.com/gorilla/mux"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/deadline"
	"github.com/supplychain-resilience/scr/internal/http"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/sql"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/tokens"
	"github.com/supplychain-resilience/scr/internal/update"
	"github.com/supplychain-resilience/scr/internal/user"
	"golang.org/x/sync/errgroup"
)

type Daemon struct {
	Config
	logr.Logger

	// DB is nil when running in memory
	*sql.DB

	Users        *user.Service
	SupplyChains *supplychain.Service
	Updates      *update.Service
	Tokens       *tokens.Service

	// ListenAddress is the listening address of the daemon's http server,
	// e.g. localhost:8080
	ListenAddress *net.TCPAddr

	handlers []http.Handlers
}

// New builds a new daemon. Unless running in memory it establishes a
// connection to the database and migrates it to the latest schema.
func New(ctx context.Context, logger logr.Logger, cfg Config) (*Daemon, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.Database != "" {
		var err error
		db, err = sql.New(ctx, logger, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("creating database pool: %w", err)
		}
	} else {
		logger.Info("no database configured: data is kept in memory and lost upon exit")
	}

	authorizer := authz.NewAuthorizer(logger)

	userService := user.NewService(user.Options{
		Logger: logger,
		DB:     db,
	})
	supplyChainService := supplychain.NewService(supplychain.Options{
		Logger:     logger,
		DB:         db,
		Authorizer: authorizer,
	})
	updateService, err := update.NewService(update.Options{
		Logger:       logger,
		DB:           db,
		SupplyChains: supplyChainService,
		Calendar:     deadline.NewCalendar(),
	})
	if err != nil {
		return nil, err
	}
	tokensService, err := tokens.NewService(tokens.Options{
		Logger:  logger,
		Secret:  cfg.Secret,
		GetUser: userService.GetSubject,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up authentication middleware: %w", err)
	}

	return &Daemon{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Users:        userService,
		SupplyChains: supplyChainService,
		Updates:      updateService,
		Tokens:       tokensService,
		handlers: []http.Handlers{
			tokensService,
			updateService,
		},
	}, nil
}

// Start the scrd daemon and block until ctx is cancelled or an error is
// returned. The started channel is closed once the daemon has started.
func (d *Daemon) Start(ctx context.Context, started chan struct{}) error {
	// Cancel context the first time a func started with g.Go() fails
	g, ctx := errgroup.WithContext(ctx)

	// close all db connections upon exit
	if d.DB != nil {
		defer d.DB.Close()
	}

	// Anti-forgery tokens are authenticated with a 32 byte key derived from
	// the secret.
	csrfKey := sha256.Sum256(d.Secret)

	// Construct web server and start listening on port
	server, err := http.NewServer(d.Logger, http.ServerConfig{
		SSL:                  d.SSL,
		CertFile:             d.CertFile,
		KeyFile:              d.KeyFile,
		EnableRequestLogging: d.EnableRequestLogging,
		SecureCookies:        d.SecureCookies || d.SSL,
		CSRFKey:              csrfKey[:],
		Middleware:           []mux.MiddlewareFunc{d.Tokens.Middleware()},
		Handlers:             d.handlers,
	})
	if err != nil {
		return fmt.Errorf("setting up http server: %w", err)
	}
	ln, err := net.Listen("tcp", d.Address)
	if err != nil {
		return err
	}
	d.ListenAddress = ln.Addr().(*net.TCPAddr)

	defer ln.Close()

	subsystems := []*Subsystem{
		{
			Name:   "update_metrics",
			Logger: d.Logger,
			System: &update.MetricsCollector{Service: d.Updates},
		},
	}
	for _, ss := range subsystems {
		ss.Start(ctx, g)
	}

	// Run web app
	g.Go(func() error {
		if err := server.Start(ctx, ln); err != nil {
			return fmt.Errorf("http server terminated: %w", err)
		}
		return nil
	})

	// Inform the caller the daemon has started
	close(started)

	// Block until error or Ctrl-C received.
	return g.Wait()
}
