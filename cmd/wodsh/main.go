// Package main provides wodsh, an interactive shell over the rules core.
// It wires together configuration, content, dice, scripts and, optionally,
// PostgreSQL or SQLite persistence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/config"
	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/command"
	"github.com/soma-satoro/dies/internal/game/dice"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/observability"
	"github.com/soma-satoro/dies/internal/scripting"
	"github.com/soma-satoro/dies/internal/server"
	"github.com/soma-satoro/dies/internal/shell"
	"github.com/soma-satoro/dies/internal/storage"
	"github.com/soma-satoro/dies/internal/storage/postgres"
	"github.com/soma-satoro/dies/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults only when empty)")
	name := flag.String("name", "Player", "character to play")
	splatName := flag.String("splat", ruleset.Mortal, "splat for a new character")
	persist := flag.Bool("persist", false, "load and save characters in the configured store")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging, "wodsh")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	defs, err := stat.LoadDirectory(cfg.Content.StatsDir)
	if err != nil {
		logger.Fatal("loading stat definitions", zap.Error(err))
	}
	loaded, err := ruleset.LoadSplats(cfg.Content.SplatsDir)
	if err != nil {
		logger.Fatal("loading splats", zap.Error(err))
	}
	for _, s := range loaded {
		if s.HealthLevels == 0 {
			s.HealthLevels = cfg.Rules.DefaultHealthLevels
		}
	}
	splats := ruleset.NewRegistry(loaded...)
	logger.Info("content loaded",
		zap.Int("stats", defs.Len()),
		zap.Strings("splats", splats.IDs()),
	)

	roller := dice.NewLoggedRoller(diceSource(cfg.Rules.Seed), logger)

	scripts := scripting.NewManager(roller, logger)
	defer scripts.Close()
	if cfg.Content.ScriptsDir != "" {
		if err := scripts.LoadGlobal(cfg.Content.ScriptsDir, 0); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
	}
	derivers := scripts.Derivers(scripting.GlobalScope)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)
	roster := shell.NewRoster()
	var (
		self   *character.Character
		saver  shell.Saver
		boosts = command.NewBoostQueue()
	)

	if *persist {
		chars, boostStore, closeStore, err := openStores(ctx, cfg, defs, derivers, lifecycle, logger)
		if err != nil {
			logger.Fatal("opening storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		}
		defer closeStore()
		boosts = command.NewPersistentBoostQueue(boostStore, logger)
		saver = chars

		self, err = loadOrCreate(ctx, chars, splats, defs, *name, *splatName, derivers)
		if err != nil {
			logger.Fatal("loading character", zap.String("name", *name), zap.Error(err))
		}
		if err := loadRoster(ctx, chars, boostStore, boosts, roster, self); err != nil {
			logger.Fatal("loading roster", zap.Error(err))
		}
	} else {
		sp, err := splats.Splat(*splatName)
		if err != nil {
			logger.Fatal("resolving splat", zap.String("splat", *splatName), zap.Error(err))
		}
		self, err = character.Build(*name, sp, defs, derivers...)
		if err != nil {
			logger.Fatal("building character", zap.Error(err))
		}
	}

	dispatcher := command.NewDispatcher(command.Options{
		Definitions:       defs,
		Splats:            splats,
		Roller:            roller,
		Resolver:          stat.NewResolver(cfg.Rules.MatchThreshold),
		Logger:            logger,
		Roster:            roster,
		Boosts:            boosts,
		DefaultDifficulty: cfg.Rules.DefaultDifficulty,
		WoundPenalty:      cfg.Rules.WoundPenalty,
	})

	lifecycle.Add("shell", shell.New(shell.Options{
		Dispatcher: dispatcher,
		Self:       self,
		Roster:     roster,
		Saver:      saver,
		In:         os.Stdin,
		Out:        os.Stdout,
		Logger:     logger,
		Prompt:     "> ",
	}))

	logger.Info("session ready",
		zap.String("character", self.Name),
		zap.String("splat", self.Splat),
		zap.Bool("persist", *persist),
		zap.String("driver", cfg.Storage.Driver),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("session error", zap.Error(err))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// diceSource returns a reproducible source for a non-zero seed.
func diceSource(seed int64) dice.Source {
	if seed != 0 {
		return dice.NewSeededSource(seed)
	}
	return dice.NewCryptoSource()
}

// openStores opens the configured character and boost stores. The returned
// func releases them.
func openStores(
	ctx context.Context,
	cfg config.Config,
	defs stat.Definitions,
	derivers []stat.Deriver,
	lifecycle *server.Lifecycle,
	logger *zap.Logger,
) (storage.CharacterStore, storage.BoostStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, nil, fmt.Errorf("creating storage dir: %w", err)
			}
		}
		store, err := sqlite.Open(cfg.Storage.SQLitePath, defs, derivers...)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.Storage.SQLitePath))
		return store, store.Boosts(), func() { _ = store.Close() }, nil
	default:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
		)
		lifecycle.Add("postgres", healthProbe(pool, logger))
		repo := postgres.NewCharacterRepository(pool.DB(), defs, derivers...)
		return repo, postgres.NewBoostRepository(pool.DB()), pool.Close, nil
	}
}

func loadOrCreate(
	ctx context.Context,
	repo storage.CharacterStore,
	splats *ruleset.Registry,
	defs *stat.Registry,
	name, splatName string,
	derivers []stat.Deriver,
) (*character.Character, error) {
	c, err := repo.GetByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, storage.ErrCharacterNotFound) {
		return nil, err
	}
	sp, err := splats.Splat(splatName)
	if err != nil {
		return nil, err
	}
	c, err = character.Build(name, sp, defs, derivers...)
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, c)
}

// loadRoster adds every other stored character and requeues their pending boosts.
func loadRoster(
	ctx context.Context,
	repo storage.CharacterStore,
	boostRepo storage.BoostStore,
	boosts *command.BoostQueue,
	roster *shell.Roster,
	self *character.Character,
) error {
	all, err := repo.List(ctx)
	if err != nil {
		return err
	}
	byID := map[string]*character.Character{self.ID.String(): self}
	for _, c := range all {
		if c.ID == self.ID {
			continue
		}
		roster.Add(c)
		byID[c.ID.String()] = c
	}
	pending, err := boostRepo.Pending(ctx)
	if err != nil {
		return err
	}
	for _, p := range pending {
		if c, ok := byID[p.CharacterID.String()]; ok {
			boosts.Restore(c, p.Boost)
		}
	}
	return nil
}

// healthProbe pings the database every 30s until stopped.
func healthProbe(pool *postgres.Pool, logger *zap.Logger) server.Service {
	stop := make(chan struct{})
	return &server.FuncService{
		StartFn: func(ctx context.Context) error {
			t := time.NewTicker(30 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-stop:
					return nil
				case <-t.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() { close(stop) },
	}
}
