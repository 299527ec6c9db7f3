package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"

	clientmodels "onboarding/internal/client/models"
	clientstore "onboarding/internal/client/store"
	"onboarding/internal/document/catalog"
	"onboarding/internal/document/models"
	docservice "onboarding/internal/document/service"
	docstore "onboarding/internal/document/store"
	httpapi "onboarding/internal/http"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/redis"
	"onboarding/internal/ratelimit"
	"onboarding/internal/reportcache"
	id "onboarding/pkg/domain"
	audit "onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/audit/publisher"
	"onboarding/pkg/platform/audit/publishers/kafka"
	auditmemory "onboarding/pkg/platform/audit/store/memory"
	auditpostgres "onboarding/pkg/platform/audit/store/postgres"
)

const (
	auditBufferSize = 256

	completenessReports = "completeness"
	coherenceReports    = "coherence"
)

var reportKinds = []string{completenessReports, coherenceReports}

var staticFallback = models.ExtractedFieldSet{IsValid: true, Confidence: 1}

type clientStore interface {
	clientstore.Creator
	FindByID(ctx context.Context, clientID id.ClientID) (*clientmodels.ClientProfile, error)
	FindByRFC(ctx context.Context, rfc id.RFC) (*clientmodels.ClientProfile, error)
}

type typeRegistry interface {
	ListApplicable(ctx context.Context, pt id.PersonType) ([]models.DocumentTypeDefinition, error)
	FindByID(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentTypeDefinition, error)
}

// infra holds the storage and messaging backends picked from config.
type infra struct {
	clients   clientStore
	documents docservice.Store
	types     typeRegistry
	reports   map[string]reportcache.Memo
	limiter   ratelimit.Limiter
	audit     *publisher.Publisher
	health    map[string]httpapi.HealthChecker
	closers   []func() error
}

// buildInfra selects Postgres, Redis and Kafka when configured and falls back
// to in-memory implementations otherwise.
func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{health: make(map[string]httpapi.HealthChecker)}

	defs, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	var auditStores audit.Fanout
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, db.Close)
		in.health["database"] = func(r *http.Request) error { return db.PingContext(r.Context()) }

		types := catalog.NewPostgres(db)
		if err := types.Upsert(ctx, defs); err != nil {
			in.Close()
			return nil, fmt.Errorf("sync document catalog: %w", err)
		}
		in.clients = clientstore.NewPostgres(db)
		in.documents = docstore.NewPostgres(db)
		in.types = types
		auditStores = append(auditStores, auditpostgres.New(db))
		log.Info("using postgres stores")
	} else {
		types, err := catalog.New(defs...)
		if err != nil {
			return nil, err
		}
		in.clients = clientstore.NewInMemory()
		in.documents = docstore.NewInMemory()
		in.types = types
		auditStores = append(auditStores, auditmemory.NewInMemoryStore())
		log.Info("using in-memory stores")
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if rdb != nil {
		in.closers = append(in.closers, rdb.Close)
		in.health["redis"] = func(r *http.Request) error { return rdb.Health(r.Context()) }
		in.limiter = ratelimit.NewRedis(rdb.Client)
	} else {
		in.limiter = ratelimit.NewInMemory()
	}
	in.reports = make(map[string]reportcache.Memo, len(reportKinds))
	for _, kind := range reportKinds {
		if rdb != nil {
			in.reports[kind] = reportcache.NewRedis(rdb.Client, kind, cfg.Redis.ReportTTL)
			continue
		}
		in.reports[kind] = reportcache.NewInMemory(cfg.Redis.ReportTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := kafkaSink(ctx, cfg.Kafka, log)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.closers = append(in.closers, sink.close)
		auditStores = append(auditStores, sink.publisher)
	}

	in.audit = publisher.NewPublisher(auditStores,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	return in, nil
}

// Close drains the audit publisher first so buffered events reach their
// stores before connections are released.
func (in *infra) Close() {
	if in.audit != nil {
		in.audit.Close()
	}
	for i := len(in.closers) - 1; i >= 0; i-- {
		_ = in.closers[i]()
	}
}

func loadCatalog(cfg config.CatalogConfig) ([]models.DocumentTypeDefinition, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	defs, err := catalog.LoadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load document catalog: %w", err)
	}
	return defs, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping database: %w", err), db.Close())
	}
	return db, nil
}

type kafkaAuditSink struct {
	publisher *kafka.Publisher
	close     func() error
}

func kafkaSink(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (*kafkaAuditSink, error) {
	client, err := kafka.NewClient(cfg.Brokers, cfg.AuditTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if cfg.CreateTopic {
		if err := kafka.EnsureTopic(ctx, client, cfg.AuditTopic, 3, 1); err != nil {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
	}
	log.Info("kafka audit sink enabled", "topic", cfg.AuditTopic, "brokers", cfg.Brokers)
	return &kafkaAuditSink{
		publisher: kafka.New(client, cfg.AuditTopic, kafka.WithLogger(log)),
		close: func() error {
			client.Close()
			return nil
		},
	}, nil
}
