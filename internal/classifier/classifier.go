package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Generator sends a system instruction and prompt to a generative model and
// returns its raw structured output.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type analyzer interface {
	analyze(ctx context.Context, content string) ([]models.Issue, error)
}

// Classifier is the AI classification tier. It runs live against a
// Generator or in mock mode with a keyword heuristic.
type Classifier struct {
	mu       sync.RWMutex
	mockMode bool

	live   *liveAnalyzer
	mock   mockAnalyzer
	logger *zap.Logger
}

// New returns a live classifier when generator is non-nil and a mock one
// otherwise.
func New(generator Generator, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("classifier")

	c := &Classifier{
		logger: logger,
	}

	if generator != nil {
		c.live = &liveAnalyzer{generator: generator, logger: logger}
		logger.Info("Classifier initialized in live mode")
	} else {
		c.mockMode = true
		logger.Warn("No generator configured, classifier will use mock mode")
	}

	return c
}

// Analyze classifies content. Failures are always returned so the caller can
// fall back; an empty result means the model found nothing.
func (c *Classifier) Analyze(ctx context.Context, content string) ([]models.Issue, error) {
	return c.current().analyze(ctx, content)
}

func (c *Classifier) current() analyzer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.mockMode || c.live == nil {
		return c.mock
	}
	return c.live
}

// EnableMockMode switches to the offline heuristic. It stays on until
// DisableMockMode succeeds.
func (c *Classifier) EnableMockMode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mockMode = true
	c.logger.Info("Classifier running in mock mode")
}

// DisableMockMode returns to live mode if a generator is configured.
func (c *Classifier) DisableMockMode() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live == nil {
		c.logger.Warn("Cannot disable mock mode: no generator configured")
		return fmt.Errorf("%w: no generator configured", models.ErrClassifierUnavailable)
	}

	c.mockMode = false
	c.logger.Info("Classifier running in live mode")
	return nil
}

func (c *Classifier) MockMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mockMode
}

type liveAnalyzer struct {
	generator Generator
	logger    *zap.Logger
}

func (a *liveAnalyzer) analyze(ctx context.Context, content string) ([]models.Issue, error) {
	a.logger.Info("Calling generative model for compliance analysis", zap.Int("content_length", len(content)))

	raw, err := a.generator.Generate(ctx, systemInstruction, BuildPrompt(content))
	if err != nil {
		a.logger.Error("Error analyzing content with generative model", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrClassifierUnavailable, err)
	}

	issues, err := ParseIssues(raw)
	if err != nil {
		a.logger.Error("Unparsable classifier output", zap.Error(err))
		return nil, err
	}

	a.logger.Info("Compliance analysis completed",
		zap.Int("content_length", len(content)),
		zap.Int("issues_found", len(issues)))

	return issues, nil
}

type issuesEnvelope struct {
	Issues *[]models.RawIssue `json:"issues"`
}

// ParseIssues decodes `{"issues": [...]}`. A missing issues field, invalid
// JSON or an issue without type, severity or detail is malformed.
func ParseIssues(raw string) ([]models.Issue, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var envelope issuesEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}

	if envelope.Issues == nil {
		return nil, fmt.Errorf("%w: missing issues field", models.ErrMalformedResponse)
	}

	issues, err := models.DecodeIssues(*envelope.Issues)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	for _, issue := range issues {
		if issue.Detail == "" {
			return nil, fmt.Errorf("%w: issue %s has no detail", models.ErrMalformedResponse, issue.Type)
		}
	}

	return issues, nil
}
