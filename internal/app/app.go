package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/database"
	"github.com/vancomm/tents-server/internal/middleware"
	"github.com/vancomm/tents-server/internal/repository"
	"github.com/vancomm/tents-server/internal/session"
	"github.com/vancomm/tents-server/internal/tents"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	log        *logrus.Logger
	router     *http.ServeMux
	db         *pgxpool.Pool
	cookies    *config.Cookies
	ws         *config.WebSocket
	sessions   *session.Store
	ttl        time.Duration
	params     tents.GameParams
	migrations fs.FS
}

func New(log *logrus.Logger, migrations fs.FS) *App {
	return &App{
		log:        log,
		router:     http.NewServeMux(),
		migrations: migrations,
	}
}

func (a *App) configure(ctx context.Context) error {
	params, err := config.NewGameParams()
	if err != nil {
		return err
	}
	a.params = *params

	ttl, err := config.SessionTTL()
	if err != nil {
		return err
	}
	a.ttl = ttl
	a.sessions = session.NewStore(a.log.WithField("component", "sessions"), ttl)

	db, _, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	if a.cookies, err = config.NewCookies(jwt); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}

	a.loadRoutes(repository.New(db))
	return nil
}

// handler is the router behind the middleware stack, mounted at the base
// path.
func (a *App) handler() http.Handler {
	var h http.Handler = a.router
	if base := config.BasePath(); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		middleware.Auth(a.log, a.cookies),
		middleware.Cors(),
		middleware.Logging(a.log),
	)
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Hour
	}
	return max(ttl/4, time.Second)
}

// Start serves until ctx is cancelled, then shuts the server down
// gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.configure(ctx); err != nil {
		return err
	}
	defer a.db.Close()

	addr := config.Port()
	server := &http.Server{
		Addr:              addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.sessions.Run(ctx, sweepInterval(a.ttl))
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
