package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/detector"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

type simulatedRule struct {
	pattern  *regexp.Regexp
	category models.Category
	detail   string
}

// The simulation carries no SSN or confidentiality rule, and severity comes
// from the category name instead of a per-rule level.
var simulatedRules = []simulatedRule{
	{detector.EmailPattern, models.CategoryGDPRPII, "Email address detected"},
	{regexp.MustCompile(`(?i)patient|medical record|diagnosis|treatment`), models.CategoryHIPAA, "Healthcare information detected"},
	{regexp.MustCompile(`(?i)password|secret|key|token|credential`), models.CategoryInfoSecurity, "Security credential mentioned"},
	{detector.CardNumberPattern, models.CategoryPCIDSS, "Credit card number detected"},
}

func simulatedSeverity(category models.Category) models.Severity {
	if strings.Contains(string(category), "HIPAA") {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

type mockBackend struct {
	logger *zap.Logger
	now    func() time.Time
}

func (m mockBackend) invoke(_ context.Context, req models.AgentRequest) (*models.AgentResult, error) {
	m.logger.Info("Mock: invoking agent", zap.String("topic", req.Topic))

	content, err := inputText(req.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAgentUnavailable, err)
	}

	issues := make([]models.Issue, 0)
	for _, rule := range simulatedRules {
		if rule.pattern.MatchString(content) {
			issues = append(issues, models.NewIssue(rule.category, simulatedSeverity(rule.category), rule.detail))
		}
	}

	summary := "No compliance issues detected"
	if len(issues) > 0 {
		summary = fmt.Sprintf("Found %d potential compliance issue(s)", len(issues))
	}

	return &models.AgentResult{Issues: issues, Summary: summary}, nil
}

func (m mockBackend) createIncident(_ context.Context, incident *models.Incident) (string, error) {
	m.logger.Info("Mock: logging compliance incident",
		zap.Strings("types", incident.Types),
		zap.Stringer("severity", incident.Severity),
		zap.String("channel", incident.Channel))
	return fmt.Sprintf("mock-id-%d", m.now().UnixMilli()), nil
}

// inputText returns string input as is and JSON-encodes anything else.
func inputText(input interface{}) (string, error) {
	switch v := input.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
