package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

func mockClient() *Client {
	c := NewClient(Config{}, nil)
	c.EnableMockMode()
	return c
}

func TestMockInvoke_SeverityFollowsCategoryName(t *testing.T) {
	result, err := mockClient().Invoke(context.Background(), models.AgentRequest{
		Input: "patient diagnosis sent to nurse@clinic.org with password hunter2 and card 4111111111111111",
	})

	require.NoError(t, err)
	assert.Equal(t, []models.Issue{
		models.NewIssue(models.CategoryGDPRPII, models.SeverityMedium, "Email address detected"),
		models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "Healthcare information detected"),
		models.NewIssue(models.CategoryInfoSecurity, models.SeverityMedium, "Security credential mentioned"),
		models.NewIssue(models.CategoryPCIDSS, models.SeverityMedium, "Credit card number detected"),
	}, result.Issues)
	assert.Equal(t, "Found 4 potential compliance issue(s)", result.Summary)
}

func TestMockInvoke_NoSSNOrConfidentialityRule(t *testing.T) {
	result, err := mockClient().Invoke(context.Background(), models.AgentRequest{
		Input: "CONFIDENTIAL: 123-45-6789",
	})

	require.NoError(t, err)
	assert.NotNil(t, result.Issues)
	assert.Empty(t, result.Issues)
	assert.Equal(t, "No compliance issues detected", result.Summary)
}

func TestMockInvoke_CardKeywordsAloneDoNotMatch(t *testing.T) {
	result, err := mockClient().Invoke(context.Background(), models.AgentRequest{Input: "what is the cvv on the credit card"})

	require.NoError(t, err)
	assert.Empty(t, result.Issues)
}

func TestMockInvoke_StructuredInputIsEncoded(t *testing.T) {
	result, err := mockClient().Invoke(context.Background(), models.AgentRequest{
		Topic: models.TopicManualComplianceAudit,
		Input: models.AuditInput{Command: "audit", TargetType: "channel", TargetID: "C0123"},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Issues)
}

func TestMockCreateIncident_UsesClientClock(t *testing.T) {
	c := mockClient()
	c.now = func() time.Time { return time.UnixMilli(1712345678901) }

	id := c.CreateIncident(context.Background(), models.NewIncident([]string{"HIPAA"}, models.SeverityHigh, "x"))

	assert.Equal(t, "mock-id-1712345678901", id)
}
