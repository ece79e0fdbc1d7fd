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

	"github.com/stagepass/presence-api/internal/api"
	"github.com/stagepass/presence-api/internal/api/handler"
	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/service"
	"github.com/stagepass/presence-api/internal/infrastructure/config"
	"github.com/stagepass/presence-api/internal/infrastructure/db/mongo"
	"github.com/stagepass/presence-api/internal/infrastructure/db/redis"
	"github.com/stagepass/presence-api/internal/infrastructure/queue"
	"github.com/stagepass/presence-api/internal/infrastructure/sensor"
	"github.com/stagepass/presence-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error running server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Console: cfg.Env == "development",
		Service: "presence-api",
	})

	// Fail fast on a broken rate table rather than per request.
	rates := domain.RateTable{
		PlatformRate:        cfg.Fees.PlatformRate,
		ProcessingRate:      cfg.Fees.ProcessingRate,
		ProcessingFlatCents: cfg.Fees.ProcessingFlatCents,
		DirectReferralRate:  cfg.Fees.DirectReferralRate,
		Tier2ReferralRate:   cfg.Fees.Tier2ReferralRate,
	}
	if err := rates.Validate(); err != nil {
		return fmt.Errorf("rate table: %w", err)
	}

	// --- Infra ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	showRepo := mongo.NewShowRepository(db)
	if err := showRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure show indexes")
	}

	locationCache := redis.NewLocationCache(rdb)
	matchCache := redis.NewMatchCache(rdb)
	hub := sensor.NewHub()

	// --- Core services ---
	matcher := service.NewMatcherService(service.MatcherConfig{
		DefaultRadiusMeters: cfg.Match.DefaultRadiusMeters,
		MaxRadiusMeters:     cfg.Match.MaxRadiusMeters,
		TimeWindow:          cfg.Match.TimeWindow(),
		MinConfidence:       cfg.Match.MinConfidence,
	}, showRepo, log)

	allocator := service.NewAllocatorService(service.AllocatorConfig{
		MinAmountCents: cfg.Fees.MinAmountCents,
		MaxAmountCents: cfg.Fees.MaxAmountCents,
	}, log)

	dispatcher := queue.NewDispatcher(cfg.Match.Workers, matcher, matchCache, cfg.Match.ResultTTL(), log)
	dispatcher.Start(ctx)

	sessions := service.NewGeolocateService(service.GeolocateConfig{
		EnableHighAccuracy: cfg.Geo.EnableHighAccuracy,
		Timeout:            cfg.Geo.Timeout(),
		MaximumAge:         cfg.Geo.MaximumAge(),
	}, hub, locationCache, matchCache, func(sessionID string, loc domain.UserLocation) {
		dispatcher.Enqueue(queue.MatchJob{SessionID: sessionID, Location: loc})
	}, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Sessions: handler.NewSessionHandler(sessions, hub),
		Matches: handler.NewMatchHandler(matcher, sessions, handler.ConfidenceBands{
			High:   cfg.Match.HighConfidence,
			Medium: cfg.Match.MediumConfidence,
		}, cfg.Match.DefaultRadiusMeters),
		Donations: handler.NewDonationHandler(allocator, rates),
		Health:    handler.NewHealthHandler(),
		Readiness: handler.NewReadinessHandler(db, rdb),
		Logger:    log,
	})

	errCh := make(chan error, 1)
	go func() {
		if serr := e.Start(":" + cfg.Port); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}
		errCh <- nil
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("presence API started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := e.Shutdown(shutdownCtx); serr != nil {
			return fmt.Errorf("shutdown: %w", serr)
		}
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}
		return nil
	}
}
