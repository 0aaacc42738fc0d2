// Package main provides the Kope Quest engine daemon: it loads the game
// content, connects to PostgreSQL, and runs the battle session sweeper
// until terminated.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/toseph-here/kope-quest/internal/config"
	"github.com/toseph-here/kope-quest/internal/engine"
	"github.com/toseph-here/kope-quest/internal/game/battle"
	"github.com/toseph-here/kope-quest/internal/game/rng"
	"github.com/toseph-here/kope-quest/internal/gamedata"
	"github.com/toseph-here/kope-quest/internal/observability"
	"github.com/toseph-here/kope-quest/internal/server"
	"github.com/toseph-here/kope-quest/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load game content
	contentStart := time.Now()
	data, err := gamedata.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading game content", zap.Error(err))
	}
	logger.Info("game content loaded",
		zap.String("dir", cfg.Content.Dir),
		zap.Int("locations", len(data.Locations())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect to PostgreSQL for player persistence
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	playerRepo := postgres.NewPlayerRepository(pool)

	var src rng.Source = rng.NewCryptoSource()
	if cfg.Logging.Level == "debug" {
		src = rng.NewLoggedSource(src, logger)
	}
	notifier := engine.NewLogNotifier(logger)

	registry := battle.NewRegistry(data.Table(), src, logger, battle.Options{
		MaxTurns:     cfg.Battle.MaxTurns,
		EncounterTTL: cfg.Battle.EncounterSessionTTL,
		PvPTTL:       cfg.Battle.PvPSessionTTL,
		ChallengeTTL: cfg.Battle.ChallengeTTL,
	})

	// TODO: attach the chat front end to the engine once one lands; until
	// then the daemon validates wiring at startup and runs the sweeper.
	_ = engine.New(playerRepo, data, registry, notifier, src, logger)

	sweeper := battle.NewSweeper(registry, notifier, logger, cfg.Battle.SweepInterval)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("sweeper", sweeper)

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error { return nil },
		StopFn:  func() { pool.Close() },
	})

	logger.Info("engine daemon initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}
