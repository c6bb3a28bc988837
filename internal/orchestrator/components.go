package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/agent"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/classifier"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/config"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/engine"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/scanner"
)

// Classification groups the adapters behind the fallback chain.
type Classification struct {
	Classifier *classifier.Classifier
	Agent      *agent.Client
	Engine     *engine.Engine
	Scanner    *scanner.Scanner
}

// NewClassification builds the classifier, the agent client and the
// pattern engine, and chains them in fallback order. Adapter failures only
// switch that adapter to mock mode.
func NewClassification(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Classification {
	if logger == nil {
		logger = zap.NewNop()
	}

	var generator classifier.Generator
	if cfg.UseClassifier && cfg.GenAIAPIKey != "" {
		g, err := classifier.NewGenAIGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			logger.Warn("GenAI client unavailable, classifier will use mock mode", zap.Error(err))
		} else {
			logger.Info("Classifier generator ready", zap.String("generator", g.Name()))
			generator = g
		}
	}
	cls := classifier.New(generator, logger)

	agentClient := agent.NewClient(agentConfig(cfg), logger)
	if cfg.UseAgent || cfg.IncidentStore == config.StoreSalesforce {
		if err := agentClient.Initialize(ctx); err != nil {
			logger.Warn("Salesforce unavailable, agent running in mock mode", zap.Error(err))
		}
	}

	if cfg.EnableMockMode {
		cls.EnableMockMode()
		agentClient.EnableMockMode()
	}

	eng := engine.NewDefault(logger)

	scan := scanner.New(scanner.Options{
		UseClassifier: cfg.UseClassifier,
		UseAgent:      cfg.UseAgent,
	}, cls, agentClient, eng, logger)

	logger.Info("Classification chain ready", zap.Strings("sources", scan.Sources()))

	return &Classification{
		Classifier: cls,
		Agent:      agentClient,
		Engine:     eng,
		Scanner:    scan,
	}
}

// LocalOnly chains the pattern engine alone.
func LocalOnly(logger *zap.Logger) *Classification {
	eng := engine.NewDefault(logger)
	return &Classification{
		Engine:  eng,
		Scanner: scanner.NewWithSources(eng, logger, scanner.LocalSource(eng)),
	}
}

func agentConfig(cfg *config.Config) agent.Config {
	return agent.Config{
		LoginURL:     cfg.SalesforceLoginURL,
		Username:     cfg.SalesforceUsername,
		Password:     cfg.SalesforcePassword,
		ClientID:     cfg.SalesforceClientID,
		ClientSecret: cfg.SalesforceClientSecret,
		InstanceURL:  cfg.SalesforceInstanceURL,
		AgentID:      cfg.SalesforceAgentID,
		APIVersion:   cfg.SalesforceAPIVersion,
		Timeout:      cfg.AgentTimeout,
	}
}
