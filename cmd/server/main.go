package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onboarding/internal/analyzer"
	analyzermetrics "onboarding/internal/analyzer/metrics"
	clienthandler "onboarding/internal/client/handler"
	clientmetrics "onboarding/internal/client/metrics"
	clientservice "onboarding/internal/client/service"
	clientstore "onboarding/internal/client/store"
	coherencehandler "onboarding/internal/coherence/handler"
	coherencemetrics "onboarding/internal/coherence/metrics"
	coherenceservice "onboarding/internal/coherence/service"
	completenesshandler "onboarding/internal/completeness/handler"
	completenessmetrics "onboarding/internal/completeness/metrics"
	completenessservice "onboarding/internal/completeness/service"
	dochandler "onboarding/internal/document/handler"
	docmetrics "onboarding/internal/document/metrics"
	docservice "onboarding/internal/document/service"
	"onboarding/internal/document/sweeper"
	httpapi "onboarding/internal/http"
	jwttoken "onboarding/internal/jwt_token"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/httpserver"
	"onboarding/internal/platform/logger"
	"onboarding/internal/platform/metrics"
	"onboarding/internal/ratelimit"
	ratelimitmetrics "onboarding/internal/ratelimit/metrics"
	"onboarding/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	backends, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	if cfg.Server.SeedDemoData {
		seeded := clientstore.SeedDemoClients(ctx, backends.clients, time.Now())
		log.Info("demo clients seeded", "count", len(seeded))
	}

	clientSvc := clientservice.New(backends.clients,
		clientservice.WithLogger(log),
		clientservice.WithMetrics(clientmetrics.New()),
	)
	docSvc := docservice.New(backends.documents, backends.types, backends.clients,
		docservice.WithLogger(log),
		docservice.WithAuditPublisher(backends.audit),
		docservice.WithMetrics(docmetrics.New()),
	)
	completenessSvc := completenessservice.New(backends.clients, backends.documents, backends.types,
		completenessservice.WithLogger(log),
		completenessservice.WithMemo(backends.reports[completenessReports]),
		completenessservice.WithAuditPublisher(backends.audit),
		completenessservice.WithMetrics(completenessmetrics.New()),
	)
	coherenceSvc := coherenceservice.New(backends.clients, backends.documents, backends.types, newAnalyzer(cfg.Analyzer, log),
		coherenceservice.WithLogger(log),
		coherenceservice.WithMemo(backends.reports[coherenceReports]),
		coherenceservice.WithAuditPublisher(backends.audit),
		coherenceservice.WithMetrics(coherencemetrics.New()),
		coherenceservice.WithConcurrency(cfg.Analyzer.Concurrency),
		coherenceservice.WithAnalyzerTimeout(cfg.Analyzer.Timeout),
	)

	if cfg.Sweeper.Enabled {
		worker := sweeper.New(docSvc, cfg.Sweeper.Interval, sweeper.WithLogger(log))
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Warn("expiration sweeper stopped", "error", err)
			}
		}()
	}

	docHandler := dochandler.New(docSvc, backends.types, log)
	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Metrics:      metrics.New(),
		JWTValidator: jwttoken.NewMiddlewareValidator(jwtService),
		Public: []httpapi.Module{
			clienthandler.New(clientSvc, log),
			docHandler,
			completenesshandler.New(completenessSvc, log),
		},
		Throttled: []httpapi.Module{coherencehandler.New(coherenceSvc, log)},
		Throttle: ratelimit.New(backends.limiter, "coherence", cfg.Limits.Requests, cfg.Limits.Window,
			ratelimit.WithLogger(log),
			ratelimit.WithMetrics(ratelimitmetrics.New()),
			ratelimit.WithDisabled(cfg.Limits.Disabled),
		).Handler,
		Reviewer: []httpapi.Module{httpapi.ModuleFunc(docHandler.RegisterReviewer)},
		Admin:    []httpapi.Module{httpapi.ModuleFunc(docHandler.RegisterAdmin)},
		Health:   backends.health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

// newAnalyzer uses the remote analyzer when configured. Without one, every
// document is reported as valid with no extracted fields so local runs can
// exercise the coherence endpoint.
func newAnalyzer(cfg config.AnalyzerConfig, log *slog.Logger) analyzer.Analyzer {
	if cfg.BaseURL == "" {
		log.Warn("ANALYZER_URL not set; using static analyzer")
		return analyzer.NewStatic().WithFallback(staticFallback)
	}
	breaker := circuit.New("document-analyzer",
		circuit.WithFailureThreshold(cfg.FailureThreshold),
		circuit.WithCooldown(cfg.Cooldown),
	)
	return analyzer.NewHTTPClient(cfg.BaseURL,
		analyzer.WithAPIKey(cfg.APIKey),
		analyzer.WithTimeout(cfg.Timeout),
		analyzer.WithBreaker(breaker),
		analyzer.WithMetrics(analyzermetrics.New()),
		analyzer.WithLogger(log),
	)
}
