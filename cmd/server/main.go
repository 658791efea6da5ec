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

	"golang.org/x/sync/errgroup"

	certmetrics "tranchor/internal/certificate/metrics"
	certservice "tranchor/internal/certificate/service"
	certstore "tranchor/internal/certificate/store"
	"tranchor/internal/entitlement"
	"tranchor/internal/entitlement/adapters/cached"
	"tranchor/internal/entitlement/adapters/staticpool"
	entports "tranchor/internal/entitlement/ports"
	"tranchor/internal/guard"
	"tranchor/internal/ledger"
	"tranchor/internal/lifecycle"
	"tranchor/internal/platform/auth"
	"tranchor/internal/platform/config"
	"tranchor/internal/platform/httpserver"
	"tranchor/internal/platform/logger"
	"tranchor/internal/platform/metrics"
	"tranchor/internal/platform/postgres"
	platformredis "tranchor/internal/platform/redis"
	"tranchor/internal/redemption"
	"tranchor/internal/server"
	trancheservice "tranchor/internal/tranche/service"
	tranchestore "tranchor/internal/tranche/store"
	"tranchor/pkg/platform/audit"
	auditkafka "tranchor/pkg/platform/audit/kafka"
	"tranchor/pkg/platform/audit/publisher"
	auditmemory "tranchor/pkg/platform/audit/store/memory"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, memory otherwise.
	var (
		certificates certservice.Store
		tranches     trancheservice.Store
		holdings     ledger.HoldingsStore
		ready        func() error
	)
	if cfg.PostgresURL != "" {
		pool, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		certPG := certstore.NewPostgres(pool)
		tranchePG := tranchestore.NewPostgres(pool)
		holdingsPG := ledger.NewPostgresStore(pool)
		for _, ensure := range []func(context.Context) error{
			certPG.EnsureSchema, tranchePG.EnsureSchema, holdingsPG.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				return err
			}
		}
		certificates, tranches, holdings = certPG, tranchePG, holdingsPG
		ready = func() error { return pool.Ping(context.Background()) }
		log.Info("using postgres stores")
	} else {
		certificates = certstore.NewInMemoryStore()
		tranches = tranchestore.NewInMemoryStore()
		holdings = ledger.NewMemoryStore()
		log.Warn("using in-memory stores, state will not survive restarts")
	}

	// Balance source, optionally fronted by a Redis cache.
	pool := staticpool.New("pool")
	var adapter entports.AdapterPort = pool
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		adapter = cached.New(pool, redisClient.Client, cfg.AdapterCacheTTL)
		log.Info("adapter reads cached in redis", "ttl", cfg.AdapterCacheTTL)
	}

	// Audit pipeline: queryable memory store, optionally teed to Kafka.
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer sink.Close()
		auditStore = &auditkafka.Tee{Primary: auditStore, Secondary: sink}
		log.Info("audit events streamed to kafka", "topic", cfg.AuditTopic)
	}
	auditPub := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))
	defer auditPub.Close()

	// Domain services.
	calc, err := entitlement.NewCalculator(adapter, cfg.Entitlement.SharePrecision, cfg.Entitlement.CapPrecision)
	if err != nil {
		return fmt.Errorf("build calculator: %w", err)
	}

	registryOpts := []trancheservice.Option{
		trancheservice.WithLogger(log),
		trancheservice.WithAuditPublisher(auditPub),
	}
	if cfg.Registry.EnforceIDExclusivity {
		registryOpts = append(registryOpts, trancheservice.WithIDExclusivity())
	}
	registry, err := trancheservice.New(tranches, registryOpts...)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	guardOpts := []guard.Option{
		guard.WithLogger(log),
		guard.WithAuditPublisher(auditPub),
	}
	if cfg.Entitlement.InclusiveBoundary {
		guardOpts = append(guardOpts, guard.WithInclusiveBoundary())
	}
	g := guard.New(registry, calc, guardOpts...)

	lc := lifecycle.New(
		lifecycle.WithLogger(log),
		lifecycle.WithAuditPublisher(auditPub),
	)
	led := ledger.New(holdings, g, certificates,
		ledger.WithLogger(log),
		ledger.WithAuditPublisher(auditPub),
		ledger.WithPauser(lc),
	)
	issuer, err := certservice.New(certificates, led, cfg.Custodian,
		certservice.WithLogger(log),
		certservice.WithAuditPublisher(auditPub),
		certservice.WithMetrics(certmetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build issuer: %w", err)
	}
	redeem := redemption.New(registry, g, led, cfg.Custodian,
		redemption.WithLogger(log),
		redemption.WithAuditPublisher(auditPub),
		redemption.WithPauser(lc),
	)

	router := server.NewRouter(server.Deps{
		Logger:     log,
		Metrics:    metrics.New(),
		Auth:       auth.NewService(cfg.JWTSigningKey, cfg.AdminKeyHash),
		Issuer:     issuer,
		Registry:   registry,
		Ledger:     led,
		Guard:      g,
		Redemption: redeem,
		Lifecycle:  lc,
		Audit:      auditPub,
		Pool:       pool,
		Adapter:    adapter,
		Ready:      ready,
	})

	srv := httpserver.New(cfg.Addr, router)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
