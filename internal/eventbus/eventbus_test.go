package eventbus

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/engine"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type localScanner struct {
	contents []string
}

func (l *localScanner) Scan(_ context.Context, content string) []models.Issue {
	l.contents = append(l.contents, content)
	return engine.NewDefault(nil).ScanLocally(content)
}

func TestSubscriber_HandleScanRequest(t *testing.T) {
	scanner := &localScanner{}
	s := &Subscriber{scanner: scanner, logger: zap.NewNop()}

	raw := s.handleScanRequest([]byte(`{"content":"password is hunter2","source":"gateway"}`))

	var reply ScanReply
	require.NoError(t, json.Unmarshal(raw, &reply))
	assert.Equal(t, []string{"Security-Credentials"}, models.Types(reply.Issues))
	assert.Equal(t, models.SeverityCritical, reply.Severity)
	assert.Empty(t, reply.Error)
	assert.Equal(t, []string{"password is hunter2"}, scanner.contents)
}

func TestSubscriber_HandleScanRequestNoIssues(t *testing.T) {
	s := &Subscriber{scanner: &localScanner{}, logger: zap.NewNop()}

	raw := s.handleScanRequest([]byte(`{"content":"see you at lunch"}`))

	assert.JSONEq(t, `{"issues":[],"severity":"Medium"}`, string(raw))
}

func TestSubscriber_HandleInvalidRequest(t *testing.T) {
	scanner := &localScanner{}
	s := &Subscriber{scanner: scanner, logger: zap.NewNop()}

	raw := s.handleScanRequest([]byte(`not json`))

	var reply ScanReply
	require.NoError(t, json.Unmarshal(raw, &reply))
	assert.Equal(t, "invalid scan request", reply.Error)
	assert.Empty(t, scanner.contents)
}

func TestNewIncidentEvent(t *testing.T) {
	inc := models.NewIncident([]string{"HIPAA"}, models.SeverityHigh, "x")
	issues := []models.Issue{models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "Healthcare information detected")}

	event := NewIncidentEvent("inc-1", inc, issues, "message")

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "inc-1", event.IncidentID)
	assert.NotZero(t, event.Timestamp)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source":"message"`)
	assert.Contains(t, string(data), `"severity":"High"`)
}
