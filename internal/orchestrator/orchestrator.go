// Package orchestrator manages the compliance auditor lifecycle.
//
// Lifecycle:
//  1. Start() builds the classification chain, the incident store, the
//     event bus, the Slack handler and the health servers
//  2. Run() serves until the context is cancelled or a server fails
//  3. Stop() drains background work and closes every connection
//
// The event bus and the alternative incident stores are optional. The
// service keeps running without NATS; a configured store that cannot be
// reached fails Start.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/audit"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/config"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/eventbus"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/health"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/incident"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/monitor"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/slackbot"
)

const (
	serviceName     = "compliance-auditor"
	shutdownTimeout = 10 * time.Second
)

var errNATSDisconnected = errors.New("nats connection lost")

type Orchestrator struct {
	config *config.Config
	logger *zap.Logger

	// Core components
	classification *Classification
	recorder       monitor.IncidentRecorder
	redisStore     *incident.RedisStore
	postgresStore  *incident.PostgresStore
	publisher      *eventbus.Publisher
	subscriber     *eventbus.Subscriber
	monitor        *monitor.Monitor
	handler        *slackbot.Handler

	// Servers
	slackServer  *http.Server
	healthServer *health.Server
	grpcListener net.Listener
}

func NewOrchestrator(cfg *config.Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		config: cfg,
		logger: logger.Named("orchestrator"),
	}
}

// Start initializes every component. It must be called before Run.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.logger.Info("Starting compliance auditor")

	o.classification = NewClassification(ctx, o.config, o.logger)

	if err := o.initializeIncidentStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize incident store: %w", err)
	}

	o.connectEventBus()

	o.initializeSlack()

	if err := o.initializeHealth(); err != nil {
		return fmt.Errorf("failed to initialize health servers: %w", err)
	}

	o.logger.Info("Compliance auditor started",
		zap.String("incident_store", o.config.IncidentStore),
		zap.Bool("event_bus", o.publisher != nil))
	return nil
}

func (o *Orchestrator) initializeIncidentStore(ctx context.Context) error {
	switch o.config.IncidentStore {
	case config.StoreRedis:
		store, err := incident.NewRedisStore(ctx, o.config.RedisAddr, o.config.RedisPassword, o.config.RedisDB)
		if err != nil {
			return err
		}
		o.redisStore = store
		o.recorder = incident.NewRecorder(store, o.logger)
	case config.StorePostgres:
		store, err := incident.NewPostgresStore(ctx, o.config.DatabaseURL)
		if err != nil {
			return err
		}
		o.postgresStore = store
		o.recorder = incident.NewRecorder(store, o.logger)
	default:
		o.recorder = o.classification.Agent
	}

	o.logger.Info("Incident store ready", zap.String("store", o.config.IncidentStore))
	return nil
}

// connectEventBus is optional; failures are logged and the bus stays off.
func (o *Orchestrator) connectEventBus() {
	if o.config.NATSURL == "" {
		o.logger.Info("NATS_URL not set, event bus disabled")
		return
	}

	publisher, err := eventbus.NewPublisher(o.config.NATSURL, o.logger)
	if err != nil {
		o.logger.Warn("Event bus unavailable, incidents will not be published", zap.Error(err))
		return
	}
	o.publisher = publisher

	subscriber, err := eventbus.NewSubscriber(o.config.NATSURL, o.classification.Scanner, o.logger)
	if err != nil {
		o.logger.Warn("Scan request subscriber unavailable", zap.Error(err))
		return
	}
	if err := subscriber.Start(); err != nil {
		o.logger.Warn("Failed to subscribe to scan requests", zap.Error(err))
		subscriber.Close()
		return
	}
	o.subscriber = subscriber
}

func (o *Orchestrator) initializeSlack() {
	client := slackbot.NewClient(o.config.SlackBotToken, o.logger)

	var publisher monitor.EventPublisher
	if o.publisher != nil {
		publisher = o.publisher
	}
	o.monitor = monitor.New(o.classification.Scanner, client, client, o.recorder, publisher, o.logger)

	var invoker audit.Invoker
	if o.config.UseAgent {
		invoker = o.classification.Agent
	}
	auditor := audit.New(invoker, o.logger)

	o.handler = slackbot.NewHandler(o.config.SlackSigningSecret, o.monitor, auditor, client, o.logger)
	o.slackServer = &http.Server{
		Addr:              ":" + o.config.Port,
		Handler:           o.handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (o *Orchestrator) initializeHealth() error {
	o.healthServer = health.NewServer(serviceName, o.logger)

	if o.redisStore != nil {
		o.healthServer.AddCheck("redis", o.redisStore.Ping)
	}
	if o.postgresStore != nil {
		o.healthServer.AddCheck("postgres", o.postgresStore.Ping)
	}
	if o.publisher != nil {
		publisher := o.publisher
		o.healthServer.AddCheck("nats", func(context.Context) error {
			if !publisher.IsConnected() {
				return errNATSDisconnected
			}
			return nil
		})
	}

	listener, err := net.Listen("tcp", ":"+o.config.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", o.config.GRPCPort, err)
	}
	o.grpcListener = listener
	return nil
}

// Run serves Slack, health and gRPC health until ctx is cancelled. A
// cancelled context is a clean exit.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o.logger.Info("Slack endpoints listening", zap.String("addr", o.slackServer.Addr))
		if err := o.slackServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("slack server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := o.healthServer.StartHTTP(":" + o.config.HealthPort); err != nil {
			return fmt.Errorf("health check server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := o.healthServer.ServeGRPC(o.grpcListener); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		o.logger.Info("Shutdown signal received")
		return o.shutdownServers()
	})

	o.logger.Info("Compliance auditor ready")
	return g.Wait()
}

func (o *Orchestrator) shutdownServers() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := o.slackServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("slack server shutdown: %w", err))
	}
	if err := o.healthServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("health server shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// Stop waits for in-flight event work and releases every connection.
func (o *Orchestrator) Stop() error {
	o.logger.Info("Stopping orchestrator")

	if o.handler != nil {
		o.handler.Wait()
	}
	if o.monitor != nil {
		o.monitor.Wait()
	}

	if o.grpcListener != nil {
		// Serve closes it already; a second close only reports that.
		_ = o.grpcListener.Close()
	}

	if o.subscriber != nil {
		o.subscriber.Close()
	}
	if o.publisher != nil {
		o.publisher.Close()
	}

	if o.redisStore != nil {
		if err := o.redisStore.Close(); err != nil {
			o.logger.Warn("Error closing Redis client", zap.Error(err))
		}
	}
	if o.postgresStore != nil {
		o.postgresStore.Close()
	}

	o.logger.Info("Orchestrator stopped")
	return nil
}

// Classification exposes the chain the service runs.
func (o *Orchestrator) Classification() *Classification {
	return o.classification
}
