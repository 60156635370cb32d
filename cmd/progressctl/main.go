// Package main is progressctl, the parent and operator CLI for a child's
// progress ledger. It reads the same configuration and store as the app, so
// a parent can review the dashboard, replay activities, or wipe a profile.
//
// Usage:
//
//	progressctl [-config file] <command> [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkboard/progress-engine/config"
	"github.com/talkboard/progress-engine/internal/application/gamification"
	"github.com/talkboard/progress-engine/internal/domain/ledger"
	"github.com/talkboard/progress-engine/internal/domain/shared"
	"github.com/talkboard/progress-engine/internal/infrastructure/messaging"
	"github.com/talkboard/progress-engine/internal/infrastructure/persistence"
	"github.com/talkboard/progress-engine/pkg/logger"
	"github.com/talkboard/progress-engine/pkg/retry"
	"github.com/talkboard/progress-engine/pkg/timeutil"
)

// errUsage is returned for malformed command lines; main exits with 2.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "progressctl: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// app is everything a command needs.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	engine *gamification.Engine
	out    io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. GLOBAL FLAGS
	// ─────────────────────────────────────────────────────────────────────────
	global := flag.NewFlagSet("progressctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", os.Getenv(config.EnvPrefix+"_CONFIG"), "config file (yaml, json or toml)")
	global.Usage = func() { printUsage(stderr) }

	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if global.NArg() == 0 {
		printUsage(stderr)
		return errUsage
	}

	name, cmdArgs := global.Arg(0), global.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	// Commands that need no store.
	if cmd.standalone != nil {
		return cmd.standalone(cmdArgs, stdout, stderr)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Output: stderr,
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. LEDGER STORE
	// ─────────────────────────────────────────────────────────────────────────
	store, err := persistence.Open(ctx, storeConfig(cfg, log))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("closing ledger store", logger.Err(err))
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS AND ENGINE
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer bus.Close()
	defer func() {
		if m := bus.Metrics(); m != nil {
			snap := m.Snapshot()
			log.Debug("event bus summary",
				slog.Int64("published", snap.TotalPublished),
				slog.Int64("failed", snap.Failed),
				logger.Latency(snap.AverageDuration),
			)
		}
	}()

	if err := bus.SubscribeAll(func(e shared.Event) error {
		log.Info("event",
			slog.String("event_type", string(e.EventType())),
			slog.Any("payload", e.Payload()),
		)
		return nil
	}); err != nil {
		return err
	}

	engine, err := gamification.New(gamification.Deps{
		Store:     store,
		Keys:      ledger.NewKeys(cfg.Namespace()),
		Calendar:  timeutil.NewCalendar(nil, cfg.Location()),
		Publisher: bus,
		Logger:    log,
		ProfileID: cfg.Gamification.ProfileID,
	}, engineConfig(cfg))
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, log: log, engine: engine, out: stdout}
	return cmd.run(ctx, a, cmdArgs)
}

func storeConfig(cfg *config.Config, log *slog.Logger) persistence.Config {
	pc := persistence.DefaultConfig()
	pc.Backend = cfg.Store.Backend
	pc.Logger = log

	pc.SQLite.Path = cfg.SQLite.Path
	pc.SQLite.BusyTimeout = cfg.SQLite.BusyTimeout

	pc.Redis.Host = cfg.Redis.Host
	pc.Redis.Port = cfg.Redis.Port
	pc.Redis.Password = cfg.Redis.Password
	pc.Redis.DB = cfg.Redis.DB
	pc.Redis.KeyPrefix = cfg.Redis.KeyPrefix
	pc.Redis.PoolSize = cfg.Redis.PoolSize
	pc.Redis.DialTimeout = cfg.Redis.DialTimeout
	pc.Redis.ReadTimeout = cfg.Redis.ReadTimeout
	pc.Redis.WriteTimeout = cfg.Redis.WriteTimeout

	pc.Postgres.URL = cfg.Database.URL
	pc.Postgres.MaxConns = cfg.Database.MaxConns
	pc.Postgres.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pc.Postgres.ConnectTimeout = cfg.Database.ConnectTimeout

	pc.Retry = retry.DefaultConfig()
	pc.Retry.MaxAttempts = cfg.Store.RetryAttempts
	if cfg.Store.RetryDelay > 0 {
		pc.Retry.InitialDelay = cfg.Store.RetryDelay
	}

	pc.DisableBreaker = cfg.Store.BreakerThreshold == 0
	pc.Breaker.FailureThreshold = cfg.Store.BreakerThreshold
	if cfg.Store.BreakerCooldown > 0 {
		pc.Breaker.Cooldown = cfg.Store.BreakerCooldown
	}
	return pc
}

func engineConfig(cfg *config.Config) gamification.EngineConfig {
	r := cfg.Gamification.Rewards
	return gamification.EngineConfig{
		Rewards: gamification.Rewards{
			WordSpoken:     r.WordSpoken,
			SentenceFormed: r.SentenceFormed,
			StoryCompleted: r.StoryCompleted,
			QuizCorrect:    r.QuizCorrect,
		},
		StreakMilestones: cfg.Gamification.StreakMilestones,
		TopWordsLimit:    cfg.Gamification.TopWordsLimit,
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: progressctl [-config file] <command> [flags]

Reports:
  dashboard                 stars, level, streak, growth and word summary
  weekly                    words per day for the last 7 days
  top [-n 10]               most used words
  achievements              every achievement and whether it is unlocked

Activities:
  session                   start a session (updates the streak)
  word -id ID [-label L]    a word was spoken
  sentence                  a sentence was formed
  story -id ID              a story was completed
  quiz [-wrong]             a quiz question was answered
  stars -amount N [-reason] credit bonus stars

Administration:
  reset -pin PIN            wipe the whole profile (needs the parent PIN)
  hash-pin -pin PIN         print a bcrypt hash for gamification.parent_pin_hash
`)
}
