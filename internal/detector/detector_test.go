package detector

import (
	"testing"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailDetector_FiresOnAddress(t *testing.T) {
	det := NewEmailDetector()

	issue := det.Detect("reach me at jane.doe@example.com tomorrow")

	require.NotNil(t, issue, "Detection should fire on an email address")
	assert.Equal(t, models.CategoryGDPRPII, issue.Type)
	assert.Equal(t, models.SeverityMedium, issue.Severity)
	assert.Equal(t, "Email address detected", issue.Detail)
}

func TestEmailDetector_NoDetectionWithoutDomain(t *testing.T) {
	assert.Nil(t, NewEmailDetector().Detect("ping @channel about lunch"))
}

func TestSSNDetector_Separators(t *testing.T) {
	det := NewSSNDetector()

	for _, content := range []string{"123-45-6789", "123.45.6789", "123 45 6789", "123456789"} {
		issue := det.Detect("ssn " + content)
		require.NotNil(t, issue, content)
		assert.Equal(t, models.CategoryHIPAAPII, issue.Type)
		assert.Equal(t, models.SeverityHigh, issue.Severity)
	}
}

func TestHealthcareDetector_CaseInsensitive(t *testing.T) {
	issue := NewHealthcareDetector().Detect("The PATIENT was discharged")

	require.NotNil(t, issue)
	assert.Equal(t, models.CategoryHIPAA, issue.Type)
	assert.Equal(t, models.SeverityHigh, issue.Severity)
}

func TestCredentialDetector_Keywords(t *testing.T) {
	det := NewCredentialDetector()

	for _, content := range []string{"my Password is hunter2", "SSH KEY attached", "bearer token"} {
		issue := det.Detect(content)
		require.NotNil(t, issue, content)
		assert.Equal(t, models.CategorySecurityCredentials, issue.Type)
		assert.Equal(t, models.SeverityCritical, issue.Severity)
	}
}

func TestPaymentCardDetector_IssuerPrefixes(t *testing.T) {
	det := NewPaymentCardDetector()

	cards := map[string]string{
		"visa":       "4111111111111111",
		"mastercard": "5500000000000004",
		"amex":       "340000000000009",
		"diners":     "30000000000004",
		"discover":   "6011000000000004",
		"jcb":        "3530111333300000",
	}

	for issuer, number := range cards {
		issue := det.Detect("card on file " + number)
		require.NotNil(t, issue, issuer)
		assert.Equal(t, models.CategoryPCIDSS, issue.Type)
		assert.Equal(t, models.SeverityCritical, issue.Severity)
	}
}

func TestPaymentCardDetector_Keywords(t *testing.T) {
	det := NewPaymentCardDetector()

	assert.NotNil(t, det.Detect("what is the CVV on that?"))
	assert.NotNil(t, det.Detect("Expiration Date is next month"))
	assert.Nil(t, det.Detect("order number 12345"))
}

func TestConfidentialityDetector(t *testing.T) {
	issue := NewConfidentialityDetector().Detect("INTERNAL ONLY - do not forward")

	require.NotNil(t, issue)
	assert.Equal(t, models.CategoryInternalPolicy, issue.Type)
	assert.Equal(t, models.SeverityMedium, issue.Severity)
}

func TestPatternDetector_EmptyContent(t *testing.T) {
	for _, det := range DefaultDetectors() {
		assert.Nil(t, det.Detect(""), det.Name())
	}
}

func TestFileNameIssue(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected models.Category
	}{
		{"healthcare", "Patient_Records.csv", models.CategoryHIPAA},
		{"payment", "payment-export.xlsx", models.CategoryPCIDSS},
		{"credentials", "secrets.env", models.CategorySecurityCredentials},
		{"personal", "customer_list.pdf", models.CategoryGDPRPII},
		{"healthcare_wins_over_payment", "health_card.png", models.CategoryHIPAA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := FileNameIssue(tt.fileName)
			require.NotNil(t, issue)
			assert.Equal(t, tt.expected, issue.Type)
		})
	}

	assert.Nil(t, FileNameIssue("quarterly-roadmap.txt"))
}

func TestSupplementFileNameIssues(t *testing.T) {
	contentHIPAA := []models.Issue{models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "Healthcare information detected")}

	assert.Len(t, SupplementFileNameIssues("patient.csv", contentHIPAA), 1, "HIPAA already found in content")

	issues := SupplementFileNameIssues("patient.csv", nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "Potential patient data in file name", issues[0].Detail)

	issues = SupplementFileNameIssues("customer_cards.csv", contentHIPAA)
	require.Len(t, issues, 2)
	assert.Equal(t, models.CategoryGDPRPII, issues[1].Type)

	assert.Len(t, SupplementFileNameIssues("passwords.txt", nil), 0, "only healthcare and personal hints supplement")
}
