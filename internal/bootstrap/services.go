package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pressrun/backoffice/config"
	"github.com/pressrun/backoffice/internal/adapters/blobfs"
	"github.com/pressrun/backoffice/internal/adapters/docparse"
	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/data"
	"github.com/pressrun/backoffice/internal/observability/notify"
	"github.com/pressrun/backoffice/internal/observability/notify/pagerduty"
	"github.com/pressrun/backoffice/internal/observability/notify/slack"
	"github.com/pressrun/backoffice/internal/observability/statsd"
	"github.com/pressrun/backoffice/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.JobService
	Readiness     *service.ReadinessService
	Chain         *service.ChainService
	Settlement    *service.SettlementService
	Catalog       *service.CatalogService
	Audit         *service.AuditService
	Dispatcher    *service.OutboxDispatcher
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink    *statsd.Client
	MetricsConfig  config.ObservabilityMetricsConfig
	EventSink      notify.Sink
	FailureSink    notify.FailureSink
	NotifierConfig config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB          *sql.DB
	Transactor  *data.SQLTransactor
	JobRepo     *data.JobRepo
	ChainRepo   *data.ChainLinkRepo
	AuditRepo   *data.AuditRepo
	OutboxRepo  *data.OutboxRepo
	PricingRepo core.PricingRuleRepository
	PartyRepo   *data.CounterpartyRepo
	FileRepo    *data.JobFileRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(deps ServiceDeps) *serviceRepositories {
	tp := &data.RealTimeProvider{}

	var pricing core.PricingRuleRepository = data.NewPricingRuleRepo(deps.DB, tp)
	if deps.Config.Cache.Enabled && deps.RedisClient != nil {
		pricing = data.NewCachedPricingRuleRepo(data.CachedPricingRuleRepoOptions{
			Inner:  pricing,
			Client: deps.RedisClient,
			TTL:    deps.Config.Cache.PricingRuleTTL,
			Logger: deps.Logger,
		})
	}

	return &serviceRepositories{
		DB:          deps.DB,
		Transactor:  data.NewSQLTransactor(deps.DB),
		JobRepo:     data.NewJobRepo(deps.DB, data.JobRepoConfig{TimeProvider: tp, Logger: deps.Logger}),
		ChainRepo:   data.NewChainLinkRepo(deps.DB, tp),
		AuditRepo:   data.NewAuditRepo(deps.DB, tp),
		OutboxRepo:  data.NewOutboxRepo(deps.DB, tp),
		PricingRepo: pricing,
		PartyRepo:   data.NewCounterpartyRepo(deps.DB, tp),
		FileRepo:    data.NewJobFileRepo(deps.DB, tp),
	}
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "pressrun",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	eventSink := buildEventSink(obsLogger, cfg.Notifications)
	failureSink := buildFailureSink(obsLogger, cfg.Notifications)

	return ObservabilityContainer{
		MetricsSink:    metricsSink,
		MetricsConfig:  cfg.Metrics,
		EventSink:      eventSink,
		FailureSink:    failureSink,
		NotifierConfig: cfg.Notifications,
	}
}

// buildEventSink returns the Slack sink when configured, otherwise a sink
// that records deliveries in the log so the dispatcher always drains.
//
//nolint:ireturn // sink selection happens at runtime.
func buildEventSink(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) notify.Sink {
	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:   cfg.Slack.WebhookURL,
			Channel:      cfg.Slack.Channel,
			Username:     cfg.Slack.Username,
			Timeout:      cfg.Timeout,
			RetryLimit:   cfg.RetryLimit,
			JobURLPrefix: cfg.Slack.JobURLPrefix,
		})
		if err == nil {
			return client
		}
		logger.Error("failed to initialise slack sink, falling back to log sink", "error", err)
	}

	sinkLogger := logger.With("component", "log_event_sink")
	return notify.SinkFunc(func(ctx context.Context, payload notify.EventPayload) error {
		sinkLogger.InfoContext(ctx, "event delivered",
			"job_id", payload.JobID,
			"event_type", payload.EventType,
			"severity", payload.Severity,
		)
		return nil
	})
}

// buildFailureSink returns the PagerDuty escalation sink, or nil when
// escalation is not configured.
//
//nolint:ireturn // sink selection happens at runtime.
func buildFailureSink(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) notify.FailureSink {
	if !cfg.PagerDuty.Enabled {
		return nil
	}

	client, err := pagerduty.NewClient(pagerduty.Config{
		RoutingKey: cfg.PagerDuty.RoutingKey,
		Source:     cfg.PagerDuty.Source,
		Component:  cfg.PagerDuty.Component,
		Timeout:    cfg.Timeout,
		RetryLimit: cfg.RetryLimit,
	})
	if err != nil {
		logger.Error("failed to initialise pagerduty sink, escalation disabled", "error", err)
		return nil
	}
	return client
}

// BuildServices wires repositories, adapters, and services into a container.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos := buildRepositories(deps)
	observability := buildObservability(logger, deps.Config.Observability)

	blobs, err := blobfs.New(deps.Config.Intake.BlobRoot)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	parser, err := docparse.New(docparse.DefaultMappings())
	if err != nil {
		return nil, fmt.Errorf("init document parser: %w", err)
	}

	settlement := service.NewSettlementService(service.SettlementServiceOptions{
		Pricing:      repos.PricingRepo,
		PerUnitFloor: deps.Config.Settlement.PerUnitFloorAmount(),
	})

	chain := service.NewChainService(service.ChainServiceOptions{
		Tx:      repos.Transactor,
		Jobs:    repos.JobRepo,
		Links:   repos.ChainRepo,
		Parties: repos.PartyRepo,
		Audit:   repos.AuditRepo,
		Outbox:  repos.OutboxRepo,
		Logger:  logger,
	})

	jobs := service.NewJobService(service.JobServiceOptions{
		Tx:         repos.Transactor,
		Jobs:       repos.JobRepo,
		Links:      repos.ChainRepo,
		Audit:      repos.AuditRepo,
		Outbox:     repos.OutboxRepo,
		Settlement: settlement,
		Chain:      chain,
		Parser:     parser,
		Time:       &data.RealTimeProvider{},
		Logger:     logger,
	})

	readiness := service.NewReadinessService(service.ReadinessServiceOptions{
		Tx:     repos.Transactor,
		Jobs:   repos.JobRepo,
		Files:  repos.FileRepo,
		Blobs:  blobs,
		Audit:  repos.AuditRepo,
		Outbox: repos.OutboxRepo,
		Time:   &data.RealTimeProvider{},
		Logger: logger,
	})

	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		Pricing: repos.PricingRepo,
		Parties: repos.PartyRepo,
	})

	audit := service.NewAuditService(service.AuditServiceOptions{
		Audit: repos.AuditRepo,
	})

	var metrics statsd.Sink
	if observability.MetricsSink != nil {
		metrics = observability.MetricsSink
	}
	dispatcher, err := service.NewOutboxDispatcher(service.OutboxDispatcherOptions{
		Outbox:   repos.OutboxRepo,
		Sink:     observability.EventSink,
		Failures: observability.FailureSink,
		Config:   deps.Config.Dispatcher,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("init outbox dispatcher: %w", err)
	}

	return &ServiceContainer{
		Jobs:          jobs,
		Readiness:     readiness,
		Chain:         chain,
		Settlement:    settlement,
		Catalog:       catalog,
		Audit:         audit,
		Dispatcher:    dispatcher,
		Observability: observability,
	}, nil
}
