package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/detector"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

func TestEngine_RegisterDetector(t *testing.T) {
	eng := NewEngine(zap.NewNop())

	eng.RegisterDetector(detector.NewEmailDetector())

	detectors := eng.GetRegisteredDetectors()

	assert.Len(t, detectors, 1)
	assert.Contains(t, detectors, "email_address")
}

func TestEngine_DefaultRuleOrder(t *testing.T) {
	eng := NewDefault(nil)

	assert.Equal(t, []string{
		"email_address",
		"ssn_pattern",
		"healthcare_keywords",
		"security_credentials",
		"payment_card",
		"confidentiality_marker",
	}, eng.GetRegisteredDetectors())
}

func TestEngine_EmptyContent(t *testing.T) {
	issues := NewDefault(nil).ScanLocally("")

	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestEngine_NoIssues(t *testing.T) {
	assert.Empty(t, NewDefault(nil).ScanLocally("lunch at noon?"))
}

func TestEngine_EmailAlwaysGDPRMedium(t *testing.T) {
	for _, content := range []string{
		"a@b.io",
		"contact: first.last+tag@sub.example.co.uk",
		"Forwarding to OPS@EXAMPLE.ORG now",
	} {
		issues := NewDefault(nil).ScanLocally(content)
		assert.Contains(t, issues, models.NewIssue(models.CategoryGDPRPII, models.SeverityMedium, "Email address detected"), content)
	}
}

func TestEngine_VisaAndPasswordYieldExactlyTwoIssues(t *testing.T) {
	issues := NewDefault(nil).ScanLocally("card 4111111111111111 and password hunter2")

	expected := []models.Issue{
		models.NewIssue(models.CategorySecurityCredentials, models.SeverityCritical, "Security credential detected"),
		models.NewIssue(models.CategoryPCIDSS, models.SeverityCritical, "Credit card information detected"),
	}
	if diff := cmp.Diff(expected, issues); diff != "" {
		t.Errorf("ScanLocally() mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_OneIssuePerRuleRegardlessOfMatches(t *testing.T) {
	issues := NewDefault(nil).ScanLocally("a@example.com b@example.com c@example.com")

	assert.Len(t, issues, 1)
}

func TestEngine_MultipleRules(t *testing.T) {
	content := "CONFIDENTIAL: patient 123-45-6789 emailed doctor@clinic.org"

	issues := NewDefault(nil).ScanLocally(content)

	assert.Equal(t, []string{"GDPR-PII", "HIPAA/PII", "HIPAA", "Internal Policy"}, models.Types(issues))
}
