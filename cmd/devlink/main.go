package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/devlink-app/devlink/internal/config"
	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/internal/infra/database"
	"github.com/devlink-app/devlink/internal/infra/gateway"
	"github.com/devlink-app/devlink/internal/infra/repository"
	"github.com/devlink-app/devlink/internal/infra/storage"
	"github.com/devlink-app/devlink/internal/present/rest"
	"github.com/devlink-app/devlink/internal/present/rest/middleware"
	"github.com/devlink-app/devlink/internal/service"
	"github.com/devlink-app/devlink/internal/telemetry"
	"github.com/devlink-app/devlink/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Server.EnableTrace {
		shutdown, err := telemetry.Setup(context.Background(), cfg.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, "", cfg.Server.RedisDB)
	mc := database.NewMemcached(cfg.Server.MemcachedAddr)

	disk, err := storage.NewDiskStorage(cfg.Server.StoragePath, cfg.App.MediaBaseURL)
	if err != nil {
		slog.Error("failed to set up media storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	docs := repository.NewDocumentStore(db)
	follows := gateway.NewFollowGateway(docs)
	profiles := gateway.NewProfileGateway(docs, mc)

	appConfig := domain.Config{
		FQDN:         cfg.App.FQDN,
		JWTSecret:    cfg.App.JWTSecret,
		TokenExpiry:  cfg.App.TokenExpiry,
		MediaBaseURL: cfg.App.MediaBaseURL,
	}

	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(&appConfig, docs)
	preferences := service.NewPreferencesService(rdb)

	handler := rest.NewHandler(
		appConfig,
		auth,
		preferences,
		signal,
		usecase.NewUserUsecase(docs, profiles),
		usecase.NewProjectUsecase(docs, disk, signal),
		usecase.NewCommentUsecase(docs, profiles, signal),
		usecase.NewFollowUsecase(docs, follows, signal),
		usecase.NewFeedUsecase(docs, follows, profiles),
		usecase.NewActivityUsecase(docs),
	)

	authMiddleware := middleware.NewAuthMiddleware(auth, appConfig)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware(cfg.App.FQDN))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler.RegisterRoutes(e, authMiddleware.RequireIdentity)
	e.Static("/media", disk.Root())

	e.Logger.Fatal(e.Start(cfg.Server.ListenAddr))
}
