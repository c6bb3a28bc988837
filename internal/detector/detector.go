package detector

import (
	"regexp"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Detector inspects a content string and reports at most one issue.
type Detector interface {
	Name() string
	Category() models.Category
	Detect(content string) *models.Issue
}

// PatternDetector folds every match of its pattern into a single issue.
type PatternDetector struct {
	name     string
	category models.Category
	severity models.Severity
	detail   string
	pattern  *regexp.Regexp
}

// NewPatternDetector reports one fixed issue whenever pattern matches.
func NewPatternDetector(name string, category models.Category, severity models.Severity, detail string, pattern *regexp.Regexp) *PatternDetector {
	return &PatternDetector{
		name:     name,
		category: category,
		severity: severity,
		detail:   detail,
		pattern:  pattern,
	}
}

func (d *PatternDetector) Name() string {
	return d.name
}

func (d *PatternDetector) Category() models.Category {
	return d.category
}

// Detect returns nil when content does not match.
func (d *PatternDetector) Detect(content string) *models.Issue {
	if content == "" || !d.pattern.MatchString(content) {
		return nil
	}

	issue := models.NewIssue(d.category, d.severity, d.detail)
	return &issue
}
