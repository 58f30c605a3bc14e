package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/99minutos/ticketing-system/internal/api"
	"github.com/99minutos/ticketing-system/internal/api/handler"
	"github.com/99minutos/ticketing-system/internal/core/service"
	mongodb "github.com/99minutos/ticketing-system/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/ticketing-system/internal/infrastructure/db/redis"
	"github.com/99minutos/ticketing-system/internal/infrastructure/identity/keycloak"
	"github.com/99minutos/ticketing-system/internal/pkg/config"
	"github.com/99minutos/ticketing-system/pkg/logger"
)

const serviceName = "ticketing-system"

func main() {
	cfg := config.MustLoad()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	projects := mongodb.NewProjectRepository(db)
	tasks := mongodb.NewTaskRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, projects, tasks); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes failed")
	}

	directory := keycloak.New(context.Background(), keycloak.Config{
		BaseURL:      cfg.Keycloak.URL,
		Realm:        cfg.Keycloak.Realm,
		ClientID:     cfg.Keycloak.ClientID,
		ClientSecret: cfg.Keycloak.ClientSecret,
		Timeout:      cfg.Keycloak.Timeout,
	})

	userService := service.NewUserService(
		users,
		projects,
		tasks,
		directory,
		redisdb.NewMirrorLedger(rdb),
		service.NewBcryptEncoder(cfg.BcryptCost),
		logger.Component("user-service"),
	)

	router := api.NewRouter(api.Deps{
		Log:       logger.Component("http"),
		JWTSecret: cfg.JWTSecret,
		Users:     userService,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(mongoClient),
			"redis":   handler.RedisPinger(rdb),
		},
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}
