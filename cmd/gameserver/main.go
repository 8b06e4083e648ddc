// Package main provides the game server binary: it loads part content,
// opens the shop, restores the player's armory from the configured save
// store, and keeps autosaving until shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/gunbench/gunbench/internal/config"
	"github.com/gunbench/gunbench/internal/game/armory"
	"github.com/gunbench/gunbench/internal/game/bank"
	"github.com/gunbench/gunbench/internal/game/gunsmith"
	"github.com/gunbench/gunbench/internal/game/save"
	"github.com/gunbench/gunbench/internal/game/shop"
	"github.com/gunbench/gunbench/internal/observability"
	"github.com/gunbench/gunbench/internal/server"
	"github.com/gunbench/gunbench/internal/storage"
	"github.com/gunbench/gunbench/internal/storage/memory"
	"github.com/gunbench/gunbench/internal/storage/postgres"
)

// dbReadyTimeout bounds the wait for the database at boot.
const dbReadyTimeout = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	partsDir := flag.String("parts-dir", "", "path to part YAML definitions directory; empty = content.parts_dir from config")
	storeKind := flag.String("store", "postgres", "save store backend: postgres or memory")
	profileName := flag.String("profile", "", "profile to load; empty = armory.profile from config")
	shopSeed := flag.Int64("shop-seed", 0, "deterministic shop seed; 0 uses crypto randomness")
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

	logger.Info("starting workshop server",
		zap.String("store", *storeKind),
	)

	// Load part content
	contentStart := time.Now()
	dir := cfg.Content.PartsDir
	if *partsDir != "" {
		dir = *partsDir
	}
	partConfigs, err := shop.LoadPartConfigs(dir)
	if err != nil {
		logger.Fatal("loading part definitions", zap.Error(err))
	}
	logger.Info("part definitions loaded",
		zap.Int("kinds", len(partConfigs)),
		zap.String("dir", dir),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Game state
	wallet := bank.NewWallet(cfg.Armory.StartingCurrency)
	rack := armory.NewRack(cfg.Armory.RackCapacity, logger)
	bench := armory.NewWorkbench(logger)
	rack.SetOnChange(func() {
		logger.Debug("rack contents changed", zap.Int("occupied", rack.Len()))
	})

	// Shop
	src := shop.NewCryptoSource()
	if *shopSeed != 0 {
		src = shop.NewSeededSource(*shopSeed)
		logger.Info("shop randomness seeded", zap.Int64("seed", *shopSeed))
	}
	catalog := shop.NewCatalog(partConfigs, src, cfg.Armory.OfferingsPerCategory, logger)
	for _, kind := range gunsmith.Kinds() {
		catalog.Refresh(kind)
	}
	gunShop := shop.NewShop(catalog, wallet, shop.NewLogSpawner(logger), cfg.Armory.SellRatio, logger)
	for _, kind := range gunsmith.Kinds() {
		logger.Info("shop stock ready",
			zap.String("kind", string(kind)),
			zap.Int("offerings", len(gunShop.Catalog().Offerings(kind))),
		)
	}

	// Save store
	var store storage.SaveStore
	var pool *postgres.Pool
	switch *storeKind {
	case "postgres":
		dbStart := time.Now()
		pool, err = postgres.NewPool(cfg.Database)
		if err != nil {
			logger.Fatal("configuring database pool", zap.Error(err))
		}
		readyCtx, cancel := context.WithTimeout(ctx, dbReadyTimeout)
		err = pool.WaitReady(readyCtx)
		cancel()
		if err != nil {
			logger.Fatal("waiting for database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		name := cfg.Armory.Profile
		if *profileName != "" {
			name = *profileName
		}
		profiles := postgres.NewProfileRepository(pool.DB())
		profile, err := profiles.GetOrCreate(ctx, name, "")
		if err != nil {
			logger.Fatal("resolving profile", zap.String("profile", name), zap.Error(err))
		}
		logger.Info("profile resolved",
			zap.String("profile", profile.Name),
			zap.Int64("id", profile.ID),
		)
		store = postgres.NewSaveRepository(pool, profile.ID)
	case "memory":
		store = memory.New()
		logger.Warn("using in-memory save store, progress is lost on exit")
	default:
		logger.Fatal("unknown store backend", zap.String("store", *storeKind))
	}

	// Restore the armory
	coord := save.NewCoordinator(store, wallet, rack, bench, cfg.Armory.BaseStats.Stats(), save.Options{
		RackDelay:      cfg.Save.RackRestoreDelay,
		WorkbenchDelay: cfg.Save.WorkbenchRestoreDelay,
	}, logger)
	if err := coord.Restore(ctx); err != nil {
		logger.Fatal("restoring save data", zap.Error(err))
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	if pool != nil {
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				for {
					time.Sleep(30 * time.Second)
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			},
			StopFn: func() {
				pool.Close()
			},
		})
	}

	// Added after the pool so shutdown flushes the final save before the
	// pool closes.
	saver := save.NewAutosaver(coord, cfg.Save.AutosaveInterval, cfg.Save.AutosaveTick, logger)
	lifecycle.Add("autosaver", saver)

	logger.Info("workshop server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("rack_capacity", rack.Capacity()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
