package report

import (
	"strings"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Summary is the aggregate view of one scan.
type Summary struct {
	Severity models.Severity
	HIPAA    bool
	PCI      bool
	Security bool
	PII      bool
	Details  []string
}

// Summarize flags categories by type or detail text and derives the
// combined severity. The per-issue severities play no part: payment card
// or credential content is Critical, healthcare is High, anything else is
// Medium.
func Summarize(issues []models.Issue) Summary {
	s := Summary{Details: models.Details(issues)}

	for _, issue := range issues {
		kind := string(issue.Type)
		detail := strings.ToLower(issue.Detail)

		if issue.Type == models.CategoryHIPAA || strings.Contains(detail, "healthcare") {
			s.HIPAA = true
		}
		if strings.Contains(kind, "PCI") || strings.Contains(detail, "credit card") {
			s.PCI = true
		}
		if strings.Contains(kind, "Security") || strings.Contains(detail, "password") || strings.Contains(detail, "credential") {
			s.Security = true
		}
		if strings.Contains(kind, "PII") || strings.Contains(kind, "GDPR") || strings.Contains(detail, "email") {
			s.PII = true
		}
	}

	switch {
	case s.PCI || s.Security:
		s.Severity = models.SeverityCritical
	case s.HIPAA:
		s.Severity = models.SeverityHigh
	default:
		s.Severity = models.SeverityMedium
	}

	return s
}

// CombinedTypes lists the flagged categories for an incident record. When
// nothing is flagged the first issue's type is used.
func CombinedTypes(issues []models.Issue) []string {
	s := Summarize(issues)

	types := make([]string, 0, 4)
	if s.HIPAA {
		types = append(types, string(models.CategoryHIPAA))
	}
	if s.PCI {
		types = append(types, string(models.CategoryPCIDSS))
	}
	if s.Security {
		types = append(types, string(models.CategorySecurityCredentials))
	}
	if s.PII {
		types = append(types, string(models.CategoryGDPRPII))
	}

	if len(types) == 0 && len(issues) > 0 {
		types = append(types, string(issues[0].Type))
	}
	return types
}
