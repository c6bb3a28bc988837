package classifier

import (
	"context"
	"strings"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

type keywordRule struct {
	keywords []string
	issue    models.Issue
}

// Offline heuristic. Severities follow the live prompt guidance, which is
// not the same mapping the simulated rules agent uses.
var mockRules = []keywordRule{
	{
		keywords: []string{"patient", "medical", "health"},
		issue:    models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "Healthcare information detected"),
	},
	{
		keywords: []string{"credit card", "visa", "mastercard"},
		issue:    models.NewIssue(models.CategoryPCIDSS, models.SeverityCritical, "Credit card information detected"),
	},
	{
		keywords: []string{"password", "api key", "token"},
		issue:    models.NewIssue(models.CategorySecurityCredentials, models.SeverityCritical, "Security credential detected"),
	},
	{
		keywords: []string{"email", "@", "address"},
		issue:    models.NewIssue(models.CategoryGDPRPII, models.SeverityMedium, "Email address or personal information detected"),
	},
}

type mockAnalyzer struct{}

func (mockAnalyzer) analyze(_ context.Context, content string) ([]models.Issue, error) {
	issues := make([]models.Issue, 0)
	lower := strings.ToLower(content)

	for _, rule := range mockRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				issues = append(issues, rule.issue)
				break
			}
		}
	}

	return issues, nil
}
