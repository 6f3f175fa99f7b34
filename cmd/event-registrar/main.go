package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"eventRegistrar/internal/changefeed"
	"eventRegistrar/internal/changefeed/memory"
	"eventRegistrar/internal/changefeed/pgnotify"
	"eventRegistrar/internal/changefeed/redisfeed"
	"eventRegistrar/internal/config"
	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/http-server/handlers/event/createEvent"
	"eventRegistrar/internal/http-server/handlers/event/deleteEvent"
	"eventRegistrar/internal/http-server/handlers/event/getEvent"
	"eventRegistrar/internal/http-server/handlers/event/listEvents"
	"eventRegistrar/internal/http-server/handlers/event/updateEvent"
	"eventRegistrar/internal/http-server/handlers/live/attendeeCount"
	liveEvents "eventRegistrar/internal/http-server/handlers/live/events"
	liveRegistration "eventRegistrar/internal/http-server/handlers/live/myRegistration"
	"eventRegistrar/internal/http-server/handlers/live/pendingRegistrations"
	"eventRegistrar/internal/http-server/handlers/registration/createRegistration"
	"eventRegistrar/internal/http-server/handlers/registration/listPending"
	"eventRegistrar/internal/http-server/handlers/registration/myRegistration"
	"eventRegistrar/internal/http-server/handlers/registration/setStatus"
	"eventRegistrar/internal/http-server/handlers/user/createUser"
	"eventRegistrar/internal/http-server/handlers/user/listUsers"
	"eventRegistrar/internal/http-server/middleware/mwactor"
	"eventRegistrar/internal/http-server/middleware/mwlogger"
	"eventRegistrar/internal/lib/api/stream"
	"eventRegistrar/internal/lib/logger/handlers/slogpretty"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/registrar"
	"eventRegistrar/internal/seed"
	"eventRegistrar/internal/storage"
	"eventRegistrar/internal/storage/postgres"
	"eventRegistrar/internal/storage/sqlite"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/rueidis"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting event registrar",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("feed", cfg.Feed.Driver),
	)
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, feed, closeAll, err := setupStorage(log, cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer closeAll()

	if cfg.Seed {
		if err = seed.Run(ctx, log, store); err != nil {
			log.Error("failed to seed storage", sl.Err(err))
			closeAll()
			os.Exit(1)
		}
	}

	d := dispatcher.New(log, cfg.Dispatcher.ResyncInterval)
	svc := registrar.New(log, store, d)

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      newRouter(log, cfg, store, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return d.Run(gctx, feed)
	})

	g.Go(func() error {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("application stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		d.Close()

		return srv.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		log.Error("application stopped with error", sl.Err(err))
		closeAll()
		os.Exit(1)
	}

	log.Info("application stopped")
}

func newRouter(log *slog.Logger, cfg *config.Config, store storage.Store, svc *registrar.Service) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", mwactor.HeaderUserID},
	}).Handler)
	router.Use(mwactor.New(log, store, cfg.Auth.Secret))

	router.Route("/api", func(r chi.Router) {
		r.Get("/events", listEvents.New(log, svc))
		r.Post("/events", createEvent.New(log, svc))
		r.Get("/events/{id}", getEvent.New(log, svc))
		r.Put("/events/{id}", updateEvent.New(log, svc))
		r.Delete("/events/{id}", deleteEvent.New(log, svc))
		r.Get("/events/{id}/registration", myRegistration.New(log, svc))

		r.Get("/users", listUsers.New(log, svc))
		r.Post("/users", createUser.New(log, svc))

		r.Post("/registrations", createRegistration.New(log, svc))
		r.Get("/registrations/pending", listPending.New(log, svc))
		r.Put("/registrations/{id}", setStatus.New(log, svc))
	})

	up := stream.NewUpgrader(cfg.HTTPServer.AllowedOrigins)

	router.Route("/ws", func(r chi.Router) {
		r.Get("/events", liveEvents.New(log, svc, up))
		r.Get("/events/{id}/attendees", attendeeCount.New(log, svc, up))
		r.Get("/events/{id}/registration", liveRegistration.New(log, svc, up))
		r.Get("/registrations/pending", pendingRegistrations.New(log, svc, up))
	})

	return router
}

// setupStorage opens the configured store together with the feed its writes
// are announced on. The returned func releases both.
func setupStorage(log *slog.Logger, cfg *config.Config) (storage.Store, changefeed.Source, func(), error) {
	var (
		pub     storage.ChangePublisher
		src     changefeed.Source
		closers []func()
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	switch {
	case cfg.Feed.Driver == config.FeedRedis:
		client, err := rueidis.NewClient(rueidis.ClientOption{
			InitAddress: []string{cfg.Feed.RedisAddr},
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, client.Close)

		feed := redisfeed.New(log, client, cfg.Feed.RedisChannel)
		pub, src = feed, feed
	case cfg.Feed.Driver == config.FeedNative && cfg.Storage.Driver == config.StoragePostgres:
		src = pgnotify.New(log, cfg.Database.DSN(), cfg.Feed.MinReconnectInterval, cfg.Feed.MaxReconnectInterval)
	default:
		broker := memory.New(cfg.Feed.Buffer)
		closers = append(closers, broker.Close)
		pub, src = broker, broker
	}

	var (
		store storage.Store
		err   error
	)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		store, err = postgres.InitDB(log, &cfg.Database, pub)
	default:
		if mkErr := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); mkErr != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("failed to create storage directory: %w", mkErr)
		}
		store, err = sqlite.New(log, cfg.Storage.SQLitePath, pub)
	}
	if err != nil {
		closeAll()
		return nil, nil, nil, err
	}

	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", sl.Err(err))
			return
		}
		log.Info("storage closed")
	})

	return store, src, closeAll, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog()
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
