package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborlight/harborlight/internal/config"
	"github.com/harborlight/harborlight/internal/database"
	"github.com/harborlight/harborlight/internal/dispatch"
	"github.com/harborlight/harborlight/internal/logging"
	"github.com/harborlight/harborlight/internal/message"
	"github.com/harborlight/harborlight/internal/policy"
	"github.com/harborlight/harborlight/internal/risk"
	"github.com/harborlight/harborlight/internal/store"
	"github.com/harborlight/harborlight/internal/webpush"
)

func main() {
	once := flag.Bool("once", false, "run a single dispatch batch and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "harbord: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.LogLevel)

	keys, err := webpush.LoadVAPIDKeys(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	if err != nil {
		log.Error("invalid VAPID configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	subscriptions := store.NewSubscriptionStore(db)
	preferences := store.NewPreferencesStore(db)
	history := store.NewHistoryStore(db)
	interventions := store.NewInterventionStore(db)

	collector := risk.NewCollector(history)
	engine := policy.NewEngine(collector, interventions)

	var tiers []message.Generator
	if cfg.AnthropicAPIKey != "" {
		tiers = append(tiers, message.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}
	if cfg.OpenAIAPIKey != "" {
		tiers = append(tiers, message.NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	tiers = append(tiers, message.TemplateGenerator{})
	chain := message.NewChain(log, tiers...)

	push := webpush.NewClient(30 * time.Second)

	orch := dispatch.NewOrchestrator(
		subscriptions, preferences, engine, chain, interventions, push, keys, log,
		cfg.DispatchWorkers, cfg.SubjectTimeout,
	)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
		defer cancel()
		stats, err := orch.Run(ctx)
		if err != nil {
			log.Error("dispatch run failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("dispatch run complete",
			slog.Int("processed", stats.Processed),
			slog.Int("notified", stats.Notified),
			slog.Int("skipped", stats.Skipped),
			slog.Int("cooldown_skipped", stats.CooldownSkipped),
			slog.Int("expired", stats.Expired),
			slog.Int("failed", stats.Failed))
		return
	}

	scheduler := dispatch.NewScheduler(orch, log, cfg.DispatchInterval, cfg.RunTimeout)
	scheduler.Start(context.Background())
	log.Info("harbord running",
		slog.Duration("interval", cfg.DispatchInterval),
		slog.Int("workers", cfg.DispatchWorkers))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Stop()
}
