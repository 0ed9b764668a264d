package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/api"
	"github.com/graphstudio/studio/internal/config"
	"github.com/graphstudio/studio/internal/db"
	"github.com/graphstudio/studio/internal/db/migrations"
	"github.com/graphstudio/studio/internal/dbpool"
	"github.com/graphstudio/studio/internal/loader"
	"github.com/graphstudio/studio/internal/security"
	"github.com/graphstudio/studio/internal/service"
	"github.com/graphstudio/studio/internal/session"
	"github.com/graphstudio/studio/internal/store"
	"github.com/graphstudio/studio/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local API server",
		Long: `Run the HTTP and WebSocket API. Settings come from the environment
(PORT, LISTEN_HOST, TYPEDB_ADDRESS, DATABASE_URL, STUDIO_API_KEY, ...);
--address, --username and --password override the TypeDB connection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, cfg)

			log, err := newLogger(cfg.LogLevel, true)
			if err != nil {
				return err
			}

			return runServe(cmd.Context(), cfg, log)
		},
	}
}

// applyFlagOverrides lets explicitly set connection flags win over the environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.TypeDBAddress = flagAddress
	}
	if flags.Changed("username") {
		cfg.TypeDBUsername = flagUsername
	}
	if flags.Changed("password") {
		cfg.TypeDBPassword = config.Secret(flagPassword)
	}
}

// historyDeps are the optional query history components. All fields are nil
// when DATABASE_URL is unset.
type historyDeps struct {
	pool     *dbpool.Pool
	store    service.HistoryStore
	worker   *service.HistoryWorker
	recorder session.HistoryRecorder
	db       api.HistoryDB
}

func openHistory(ctx context.Context, cfg *config.Config, log *logrus.Logger) (historyDeps, error) {
	if !cfg.HistoryEnabled() {
		log.Info("DATABASE_URL not set, query history disabled")
		return historyDeps{}, nil
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return historyDeps{}, fmt.Errorf("connecting to history database: %w", err)
	}

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		pool.Close()
		return historyDeps{}, err
	}

	st := store.NewHistoryStore(store.Base{Pool: pool, Log: log})
	worker := service.NewHistoryWorker(st, log, 0)

	return historyDeps{pool: pool, store: st, worker: worker, recorder: worker, db: pool}, nil
}

func runServe(parent context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	drv := driver.New(cfg.TypeDBAddress, driver.WithCredentials(cfg.TypeDBUsername, cfg.TypeDBPassword.Value()))

	hist, err := openHistory(ctx, cfg, log)
	if err != nil {
		return err
	}
	if hist.pool != nil {
		defer hist.pool.Close()
	}

	// The history worker outlives the session manager so runs stopped during
	// shutdown are still written.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if hist.worker != nil {
		go func() {
			defer close(workerDone)
			hist.worker.Run(workerCtx)
		}()
	} else {
		close(workerDone)
	}
	defer func() {
		stopWorker()
		<-workerDone
	}()

	hub := ws.NewHub(log)
	manager := session.NewManager(ctx, loader.New(loader.NewDriverOpener(drv), cfg.ExploreWorkers, log), hub, hist.recorder, session.Config{
		MaxSessions:   cfg.MaxSessions,
		TTL:           cfg.SessionTTL,
		FrameInterval: cfg.FrameInterval,
		DrainInterval: cfg.DrainInterval,
	}, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Hub:         hub,
		Sessions:    manager,
		Databases:   drv.Databases,
		TypeDB:      drv,
		History:     service.NewHistoryService(hist.store),
		HistoryDB:   hist.db,
		Guard:       security.NewBruteForceGuard(ctx, log),
		APIKey:      cfg.APIKey.Value(),
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		manager.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return listen(srv, "api", log)
	})
	g.Go(func() error {
		return listen(metricsSrv, "metrics", log)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	log.WithFields(logrus.Fields{
		"addr":         cfg.Addr(),
		"metrics_addr": cfg.MetricsAddr(),
		"typedb":       cfg.TypeDBAddress,
		"history":      cfg.HistoryEnabled(),
		"auth":         cfg.AuthEnabled(),
		"version":      config.Version,
	}).Info("studio server starting")

	return g.Wait()
}

func listen(srv *http.Server, name string, log *logrus.Logger) error {
	log.WithField("addr", srv.Addr).Infof("%s server listening", name)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
