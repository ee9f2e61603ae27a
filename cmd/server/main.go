package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/internal/category"
	"github.com/MandalaChain/E-Certificate/internal/ledger"
	"github.com/MandalaChain/E-Certificate/internal/platform/config"
	"github.com/MandalaChain/E-Certificate/internal/platform/httpserver"
	"github.com/MandalaChain/E-Certificate/internal/platform/kafka"
	"github.com/MandalaChain/E-Certificate/internal/platform/logger"
	"github.com/MandalaChain/E-Certificate/internal/platform/metrics"
	platformredis "github.com/MandalaChain/E-Certificate/internal/platform/redis"
	"github.com/MandalaChain/E-Certificate/internal/platform/token"
	"github.com/MandalaChain/E-Certificate/internal/rbac"
	"github.com/MandalaChain/E-Certificate/internal/relay"
	httptransport "github.com/MandalaChain/E-Certificate/internal/transport/http"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New("e-certificate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when a DSN is configured, in-memory otherwise.
	var (
		auditStore    audit.Store
		rbacStore     rbac.Store
		categoryStore category.Store
		hashIndex     ledger.HashIndex
		recordStore   ledger.RecordStore
		slotAllocator ledger.SlotAllocator
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}

		auditPG := audit.NewPostgresStore(db)
		rbacPG := rbac.NewPostgresStore(db)
		categoryPG := category.NewPostgresStore(db)
		ledgerPG := ledger.NewPostgresStores(db)
		for _, ensure := range []func(context.Context) error{
			auditPG.EnsureSchema, rbacPG.EnsureSchema, categoryPG.EnsureSchema, ledgerPG.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				return err
			}
		}
		auditStore, rbacStore, categoryStore = auditPG, rbacPG, categoryPG
		hashIndex, recordStore, slotAllocator = ledgerPG.Hashes, ledgerPG.Records, ledgerPG.Slots
		log.Info("storage: postgres")
	} else {
		auditStore = audit.NewInMemoryStore()
		rbacStore = rbac.NewInMemoryStore()
		categoryStore = category.NewInMemoryStore()
		hashIndex = ledger.NewInMemoryHashIndex()
		recordStore = ledger.NewInMemoryRecordStore()
		slotAllocator = ledger.NewInMemorySlotAllocator()
		log.Info("storage: in-memory")
	}

	// Audit publisher, optionally fanning out to Kafka.
	auditOpts := []audit.Option{audit.WithLogger(log), audit.WithAsyncBuffer(1024)}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer producer.Close()
		auditOpts = append(auditOpts, audit.WithSink(kafka.NewAuditSink(producer)))
		log.Info("audit sink: kafka", "topic", cfg.KafkaAuditTopic)
	}
	publisher := audit.NewPublisher(auditStore, auditOpts...)
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	roles := rbac.NewService(rbacStore, publisher)
	if cfg.BootstrapAdmin != "" {
		admin, err := domain.ParseIdentity(cfg.BootstrapAdmin)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if err := roles.Seed(ctx, admin, domain.RoleAdministrator); err != nil {
			return fmt.Errorf("seed bootstrap admin: %w", err)
		}
		log.Info("bootstrap administrator seeded", "identity", admin)
	}

	categories := category.NewService(categoryStore, roles, publisher)
	ledgerSvc := ledger.NewService(hashIndex, recordStore, slotAllocator, categories, roles, publisher,
		ledger.WithMetrics(m))

	// Relay nonces: shared in Redis when configured, otherwise per-process.
	var nonces relay.NonceStore
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		nonces = relay.NewRedisNonceStore(redisClient.Client)
		log.Info("relay nonces: redis")
	} else {
		nonces = relay.NewInMemoryNonceStore()
	}

	relayDomain := relay.Domain{
		Name:    cfg.LedgerName,
		Version: cfg.LedgerVersion,
		ChainID: cfg.ChainID,
		Address: cfg.LedgerAddress,
	}
	dispatcher := relay.NewLedgerDispatcher(ledgerSvc, categories, roles)
	relaySvc := relay.NewService(relayDomain, relay.Ed25519Verifier{}, nonces, dispatcher, publisher,
		relay.WithMetrics(m))

	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	handler := httptransport.NewHandler(ledgerSvc, categories, roles, relaySvc, publisher, log)
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Validator: tokens,
		Metrics:   m,
		Registry:  registry,
	})
	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
