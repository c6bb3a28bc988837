package detector

import (
	"strings"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

type fileNameRule struct {
	keywords []string
	issue    models.Issue
}

// Checked in order; only the first matching group reports.
var fileNameRules = []fileNameRule{
	{
		keywords: []string{"patient", "medical", "health"},
		issue:    models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "Potential patient data in file name"),
	},
	{
		keywords: []string{"credit", "card", "payment"},
		issue:    models.NewIssue(models.CategoryPCIDSS, models.SeverityCritical, "Potential payment card data in file name"),
	},
	{
		keywords: []string{"password", "secret", "credential"},
		issue:    models.NewIssue(models.CategorySecurityCredentials, models.SeverityCritical, "Potential security credentials in file name"),
	},
	{
		keywords: []string{"customer", "personal", "email"},
		issue:    models.NewIssue(models.CategoryGDPRPII, models.SeverityMedium, "Potential personal data in file name"),
	},
}

// FileNameIssue reports the sensitive-data hint carried by a file name, if
// any.
func FileNameIssue(name string) *models.Issue {
	lower := strings.ToLower(name)
	for _, rule := range fileNameRules {
		if containsAny(lower, rule.keywords) {
			issue := rule.issue
			return &issue
		}
	}
	return nil
}

// SupplementFileNameIssues adds a file-name hint for a scanned file when the
// content scan has not already reported that category. Only the healthcare and
// personal-data groups supplement a content scan.
func SupplementFileNameIssues(name string, issues []models.Issue) []models.Issue {
	lower := strings.ToLower(name)

	healthcare, personal := fileNameRules[0], fileNameRules[3]
	switch {
	case containsAny(lower, healthcare.keywords):
		for _, issue := range issues {
			if issue.Type == models.CategoryHIPAA {
				return issues
			}
		}
		return append(issues, healthcare.issue)
	case containsAny(lower, personal.keywords):
		for _, issue := range issues {
			if strings.Contains(string(issue.Type), "GDPR") {
				return issues
			}
		}
		return append(issues, personal.issue)
	}

	return issues
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
