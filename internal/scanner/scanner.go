package scanner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Options selects the remote tiers. The local tier is always last.
type Options struct {
	UseClassifier bool
	UseAgent      bool
}

// Scanner runs its sources left to right and returns the first result that
// did not fail.
type Scanner struct {
	sources []Source
	local   LocalMatcher
	logger  *zap.Logger
}

// New builds the chain classifier, agent, local. A nil analyzer or invoker
// leaves that tier out.
func New(opts Options, analyzer Analyzer, invoker Invoker, local LocalMatcher, logger *zap.Logger) *Scanner {
	sources := make([]Source, 0, 3)
	if opts.UseClassifier && analyzer != nil {
		sources = append(sources, ClassifierSource(analyzer))
	}
	if opts.UseAgent && invoker != nil {
		sources = append(sources, AgentSource(invoker))
	}
	sources = append(sources, LocalSource(local))

	return NewWithSources(local, logger, sources...)
}

// NewWithSources uses the given order. local backs the chain when every
// source fails.
func NewWithSources(local LocalMatcher, logger *zap.Logger, sources ...Source) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		sources: sources,
		local:   local,
		logger:  logger.Named("scanner"),
	}
}

// Scan never fails. Empty content yields an empty list.
func (s *Scanner) Scan(ctx context.Context, content string) []models.Issue {
	if content == "" {
		return []models.Issue{}
	}

	for _, source := range s.sources {
		issues, err := s.attempt(ctx, source, content)
		if err != nil {
			s.logger.Warn("Scan source failed, falling back",
				zap.String("source", source.Name()),
				zap.Error(err))
			continue
		}

		if issues == nil {
			issues = []models.Issue{}
		}
		s.logger.Info("Content scanned",
			zap.String("source", source.Name()),
			zap.Int("issues_found", len(issues)))
		return issues
	}

	s.logger.Warn("All scan sources failed, using local patterns")
	if s.local == nil {
		return []models.Issue{}
	}
	return s.local.ScanLocally(content)
}

func (s *Scanner) attempt(ctx context.Context, source Source, content string) (issues []models.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = fmt.Errorf("source %s panicked: %v", source.Name(), r)
		}
	}()
	return source.Attempt(ctx, content)
}

// Sources lists the tier names in evaluation order.
func (s *Scanner) Sources() []string {
	names := make([]string, len(s.sources))
	for i, source := range s.sources {
		names[i] = source.Name()
	}
	return names
}
