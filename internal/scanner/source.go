package scanner

import (
	"context"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Source is one fallback tier. A nil error ends the chain, even when no
// issues were found.
type Source interface {
	Name() string
	Attempt(ctx context.Context, content string) ([]models.Issue, error)
}

// Analyzer is the remote classifier capability.
type Analyzer interface {
	Analyze(ctx context.Context, content string) ([]models.Issue, error)
}

// Invoker is the rules-agent capability.
type Invoker interface {
	Invoke(ctx context.Context, req models.AgentRequest) (*models.AgentResult, error)
}

// LocalMatcher is the pattern matcher. It cannot fail.
type LocalMatcher interface {
	ScanLocally(content string) []models.Issue
}

type classifierSource struct {
	analyzer Analyzer
}

func ClassifierSource(analyzer Analyzer) Source {
	return classifierSource{analyzer: analyzer}
}

func (s classifierSource) Name() string { return "classifier" }

func (s classifierSource) Attempt(ctx context.Context, content string) ([]models.Issue, error) {
	return s.analyzer.Analyze(ctx, content)
}

type agentSource struct {
	invoker Invoker
}

func AgentSource(invoker Invoker) Source {
	return agentSource{invoker: invoker}
}

func (s agentSource) Name() string { return "agent" }

func (s agentSource) Attempt(ctx context.Context, content string) ([]models.Issue, error) {
	result, err := s.invoker.Invoke(ctx, models.AgentRequest{
		Topic: models.TopicAutoPolicyMonitor,
		Input: content,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || result.Issues == nil {
		return nil, models.ErrMalformedResponse
	}
	return result.Issues, nil
}

type localSource struct {
	matcher LocalMatcher
}

func LocalSource(matcher LocalMatcher) Source {
	return localSource{matcher: matcher}
}

func (s localSource) Name() string { return "local" }

func (s localSource) Attempt(_ context.Context, content string) ([]models.Issue, error) {
	return s.matcher.ScanLocally(content), nil
}
