package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-gate/internal/api"
	"trading-gate/internal/events"
	"trading-gate/internal/executor"
	"trading-gate/internal/governance"
	"trading-gate/internal/killswitch"
	"trading-gate/internal/ledger"
	"trading-gate/internal/marketdata"
	"trading-gate/internal/monitor"
	"trading-gate/internal/order"
	"trading-gate/internal/pipeline"
	"trading-gate/internal/safety"
	"trading-gate/pkg/config"
	"trading-gate/pkg/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[BOOT] config load failed: %v", err)
	}

	// The gates policy file is the trust boundary's contract. No file, no gate.
	gates, err := config.LoadGates(cfg.GatesPath)
	if err != nil {
		log.Fatalf("[BOOT] gates policy load failed: %v", err)
	}

	buildVersion := os.Getenv("APP_VERSION")
	if buildVersion == "" {
		buildVersion = "v1.0-dev"
	}
	log.Printf("[BOOT] trading gate %s starting on port %s", buildVersion, cfg.Port)
	log.Printf("[BOOT] using database %s", cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("[BOOT] database init failed: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("[BOOT] database migrations failed: %v", err)
	}

	// Market data: the mark store folds bus ticks in; the synthetic feed
	// drives it when no real feed is attached.
	marks := marketdata.NewStore()
	go marks.Watch(ctx, bus)
	if cfg.UseSyntheticFeed {
		feed := marketdata.SyntheticFeed{
			Bus:      bus,
			Symbols:  cfg.FeedSymbols,
			Interval: time.Duration(cfg.FeedIntervalMs) * time.Millisecond,
		}
		feed.Start(ctx)
		log.Printf("[BOOT] synthetic feed started for %v", cfg.FeedSymbols)
	} else {
		log.Println("[BOOT] no feed configured; marks come from external publishers")
	}

	// Books
	books := ledger.NewMemory(marks, gates.Ledger.EquityAtOpen)

	// Governance registry from the policy file
	locks := make(map[string]governance.Lock, len(gates.Governance))
	for cap := range gates.Governance {
		locks[cap] = governance.Lock{Locked: gates.Locked(cap)}
	}
	registry := governance.NewRegistry(locks)

	// Kill switch: sqlite-backed so gatectl and the service share state.
	store, err := killswitch.NewSQLiteStore(database.DB)
	if err != nil {
		log.Fatalf("[BOOT] kill switch store init failed: %v", err)
	}
	approver, err := gates.KillSwitch.Approval.Approver()
	if err != nil {
		log.Printf("[BOOT] ⚠️ kill switch approval not configured: %v (recovery disabled)", err)
		approver = nil
	}
	swOpts := []killswitch.Option{killswitch.WithBus(bus)}
	if gates.KillSwitch.CooldownSeconds > 0 {
		swOpts = append(swOpts, killswitch.WithCooldown(time.Duration(gates.KillSwitch.CooldownSeconds)*time.Second))
	}
	sw := killswitch.NewManager(store, approver, swOpts...)

	// Executors per environment from the policy file
	execs := make(map[order.Environment]executor.Executor, len(gates.Environments))
	for env, kind := range gates.Environments {
		switch kind {
		case "paper":
			p := executor.NewPaper(marks)
			p.SlippageBps = cfg.PaperSlippageBps
			execs[order.Environment(env)] = p
		case "shadow":
			execs[order.Environment(env)] = executor.NewShadow(256)
		case "venue":
			// No venue gateway ships in this build. The environment stays
			// unmapped, so submissions to it fail closed with ERROR.
			log.Printf("[BOOT] ⚠️ environment %s wants a venue gateway; none configured", env)
		}
	}
	executors, err := executor.NewRegistry(execs)
	if err != nil {
		log.Fatalf("[BOOT] executor registry init failed: %v", err)
	}
	envNames := make([]string, 0, len(execs))
	for _, env := range executors.Environments() {
		envNames = append(envNames, string(env))
	}
	log.Printf("[BOOT] executors mapped for %v", envNames)

	// The gate itself
	metrics := monitor.NewGateMetrics()
	pipe := &pipeline.Pipeline{
		Governance: registry,
		Safety:     safety.NewGuard(marks),
		RiskConfig: gates.Risk,
		Ledger:     books,
		Switch:     sw,
		Executors:  executors,
		Symbols:    gates.SymbolSet(),
		Bus:        bus,
		Audit:      database,
		Metrics:    metrics,
	}

	// Alerting
	if cfg.AlertSink != "log" {
		log.Printf("[BOOT] unknown alert sink %q, using log", cfg.AlertSink)
	}
	notifier := monitor.Notifier{Bus: bus, Sink: monitor.LogSink{}}
	notifier.Start(ctx)

	// API
	server := api.NewServer(
		bus,
		database,
		pipe,
		sw,
		registry,
		books,
		metrics,
		api.SystemMeta{
			Version:       buildVersion,
			Environments:  envNames,
			Symbols:       gates.Symbols,
			SyntheticFeed: cfg.UseSyntheticFeed,
		},
		cfg.JWTSecret,
	)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf("[BOOT] api server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("[BOOT] shutting down")
}
