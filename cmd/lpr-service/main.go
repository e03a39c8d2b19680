package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"lpr-service/internal/auth"
	"lpr-service/internal/config"
	"lpr-service/internal/db"
	httphandler "lpr-service/internal/http"
	"lpr-service/internal/http/middleware"
	"lpr-service/internal/logger"
	"lpr-service/internal/metrics"
	"lpr-service/internal/recognizer"
	"lpr-service/internal/repository"
	"lpr-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	plateRepo := repository.NewPlateRepository(database)
	recognizerClient := recognizer.NewClient(cfg.Recognizer.BaseURL, cfg.Recognizer.Timeout, appLogger)
	plateService := service.NewPlateService(
		plateRepo,
		recognizerClient,
		appMetrics,
		appLogger,
		cfg.History.DefaultPageSize,
		cfg.History.MaxPageSize,
		cfg.History.MetaCacheTTL,
	)

	var chatProxy *httphandler.ChatProxy
	if cfg.Chat.BaseURL != "" {
		chatProxy, err = httphandler.NewChatProxy(cfg.Chat.BaseURL, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("invalid chat backend url")
		}
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(plateService, chatProxy, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, registry, appLogger, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting lpr service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
