package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const incidentObject = "Compliance_Incident__c"

type liveBackend struct {
	httpClient  *http.Client
	instanceURL string
	agentID     string
	apiVersion  string
	now         func() time.Time
	logger      *zap.Logger
}

type invokePayload struct {
	AgentID          string            `json:"agentId"`
	Topic            string            `json:"topic"`
	Input            interface{}       `json:"input"`
	ContextVariables map[string]string `json:"contextVariables"`
}

// invokeResponse keeps issues as a pointer so a missing collection can be
// told apart from an empty one.
type invokeResponse struct {
	Status string `json:"status"`
	Result *struct {
		Issues  *[]models.RawIssue `json:"issues"`
		Summary string             `json:"summary"`
	} `json:"result"`
}

func (b *liveBackend) invoke(ctx context.Context, req models.AgentRequest) (*models.AgentResult, error) {
	if b.agentID == "" {
		return nil, fmt.Errorf("%w: agent id not configured", models.ErrAgentUnavailable)
	}

	url := fmt.Sprintf("%s/services/data/%s/agentforce/agents/%s/invoke", b.instanceURL, b.apiVersion, b.agentID)
	payload := invokePayload{
		AgentID:          b.agentID,
		Topic:            req.Topic,
		Input:            req.Input,
		ContextVariables: req.ContextVariables,
	}

	body, err := b.postJSON(ctx, url, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAgentUnavailable, err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode agent response: %v", models.ErrMalformedResponse, err)
	}
	if resp.Result == nil || resp.Result.Issues == nil {
		return nil, fmt.Errorf("%w: agent response has no issues collection", models.ErrMalformedResponse)
	}

	issues, err := models.DecodeIssues(*resp.Result.Issues)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}

	b.logger.Info("Agent invocation completed",
		zap.String("topic", req.Topic),
		zap.String("status", resp.Status),
		zap.Int("issues_found", len(issues)))

	return &models.AgentResult{Issues: issues, Summary: resp.Result.Summary}, nil
}

type incidentRecord struct {
	Type        string `json:"Type__c"`
	Severity    string `json:"Severity__c"`
	Description string `json:"Description__c"`
	MessageLink string `json:"Slack_Message_Link__c"`
	User        string `json:"User_Involved__c"`
	Channel     string `json:"Channel__c"`
	Status      string `json:"Status__c"`
	Timestamp   string `json:"Timestamp__c"`
}

type createResult struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []interface{} `json:"errors"`
}

func (b *liveBackend) createIncident(ctx context.Context, incident *models.Incident) (string, error) {
	status := incident.Status
	if status == "" {
		status = models.IncidentStatusOpen
	}

	record := incidentRecord{
		Type:        incident.TypeList(";"),
		Severity:    incident.Severity.String(),
		Description: incident.Description,
		MessageLink: incident.MessageLink,
		User:        incident.User,
		Channel:     incident.Channel,
		Status:      string(status),
		Timestamp:   b.now().UTC().Format(time.RFC3339),
	}

	url := fmt.Sprintf("%s/services/data/%s/sobjects/%s/", b.instanceURL, b.apiVersion, incidentObject)
	body, err := b.postJSON(ctx, url, record)
	if err != nil {
		return "", err
	}

	var result createResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if !result.Success || result.ID == "" {
		return "", fmt.Errorf("failed to create incident: %v", result.Errors)
	}

	b.logger.Info("Compliance incident created in Salesforce", zap.String("id", result.ID))
	return result.ID, nil
}

func (b *liveBackend) postJSON(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
