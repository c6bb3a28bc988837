package engine

import (
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/detector"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Engine runs its detectors in registration order.
type Engine struct {
	detectors []detector.Detector
	logger    *zap.Logger
}

// NewEngine creates an engine with no detectors.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		detectors: make([]detector.Detector, 0),
		logger:    logger,
	}
}

// NewDefault returns an engine loaded with the local compliance rules.
func NewDefault(logger *zap.Logger) *Engine {
	e := NewEngine(logger)
	for _, det := range detector.DefaultDetectors() {
		e.RegisterDetector(det)
	}
	return e
}

// RegisterDetector adds a detector to the end of the run order.
func (e *Engine) RegisterDetector(d detector.Detector) {
	e.detectors = append(e.detectors, d)
	e.logger.Debug("Registered detector",
		zap.String("detector", d.Name()),
		zap.String("category", string(d.Category())))
}

// RunDetectors returns one issue per detector that matched. It never fails;
// empty content yields an empty list.
func (e *Engine) RunDetectors(content string) []models.Issue {
	issues := make([]models.Issue, 0)
	if content == "" {
		return issues
	}

	for _, det := range e.detectors {
		if issue := det.Detect(content); issue != nil {
			e.logger.Debug("Detection",
				zap.String("detector", det.Name()),
				zap.Stringer("severity", issue.Severity))
			issues = append(issues, *issue)
		}
	}

	return issues
}

// ScanLocally is the pattern-matcher entry point used by the fallback chain.
func (e *Engine) ScanLocally(content string) []models.Issue {
	return e.RunDetectors(content)
}

// GetRegisteredDetectors returns detector names in run order.
func (e *Engine) GetRegisteredDetectors() []string {
	names := make([]string, len(e.detectors))
	for i, det := range e.detectors {
		names[i] = det.Name()
	}
	return names
}
