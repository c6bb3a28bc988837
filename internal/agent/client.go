package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const (
	defaultLoginURL   = "https://login.salesforce.com"
	defaultAPIVersion = "v58.0"
	defaultTimeout    = 30 * time.Second
)

// Config holds the Salesforce org connection settings.
type Config struct {
	LoginURL     string
	Username     string
	Password     string
	ClientID     string
	ClientSecret string

	// InstanceURL overrides the instance returned by the login response.
	InstanceURL string
	AgentID     string
	APIVersion  string
	Timeout     time.Duration
}

func (c Config) hasCredentials() bool {
	return c.Username != "" && c.Password != "" && c.ClientID != ""
}

// backend is one invocation strategy: the authenticated org or the
// offline simulation.
type backend interface {
	invoke(ctx context.Context, req models.AgentRequest) (*models.AgentResult, error)
	createIncident(ctx context.Context, incident *models.Incident) (string, error)
}

// Client is the rules-agent adapter. It runs against a live org once
// Initialize succeeds and otherwise falls back to a local simulation.
type Client struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.RWMutex
	mockMode bool
	live     *liveBackend
	mock     mockBackend

	now func() time.Time
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = defaultLoginURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	logger = logger.Named("agent")

	c := &Client{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	c.mock = mockBackend{logger: logger, now: c.clock}
	return c
}

// clock reads now at call time so the mock and error ids share one source.
func (c *Client) clock() time.Time {
	return c.now()
}

// Initialize logs in with the OAuth2 username-password flow. On any
// failure the client switches to mock mode and the error is returned for
// logging only.
func (c *Client) Initialize(ctx context.Context) error {
	if !c.cfg.hasCredentials() {
		c.EnableMockMode()
		return fmt.Errorf("%w: salesforce credentials not configured", models.ErrAgentUnavailable)
	}

	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimRight(c.cfg.LoginURL, "/") + "/services/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	base := &http.Client{Timeout: c.cfg.Timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	token, err := conf.PasswordCredentialsToken(ctx, c.cfg.Username, c.cfg.Password)
	if err != nil {
		c.logger.Error("Failed to connect to Salesforce", zap.Error(err))
		c.EnableMockMode()
		return fmt.Errorf("%w: login failed: %v", models.ErrAgentUnavailable, err)
	}

	instanceURL := c.cfg.InstanceURL
	if instanceURL == "" {
		instanceURL, _ = token.Extra("instance_url").(string)
	}
	if instanceURL == "" {
		c.EnableMockMode()
		return fmt.Errorf("%w: login response carried no instance_url", models.ErrAgentUnavailable)
	}

	httpClient := conf.Client(ctx, token)
	httpClient.Timeout = c.cfg.Timeout

	c.mu.Lock()
	c.live = &liveBackend{
		httpClient:  httpClient,
		instanceURL: strings.TrimRight(instanceURL, "/"),
		agentID:     c.cfg.AgentID,
		apiVersion:  c.cfg.APIVersion,
		now:         c.now,
		logger:      c.logger,
	}
	c.mockMode = false
	c.mu.Unlock()

	c.logger.Info("Connected to Salesforce", zap.String("instance_url", instanceURL))
	return nil
}

func (c *Client) current() (backend, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.mockMode {
		return c.mock, true
	}
	if c.live == nil {
		return nil, false
	}
	return c.live, true
}

func (c *Client) EnableMockMode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mockMode = true
	c.logger.Info("Mock mode enabled for Salesforce operations")
}

func (c *Client) MockMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mockMode
}

// Invoke runs the agent for one request. The topic defaults to automatic
// monitoring.
func (c *Client) Invoke(ctx context.Context, req models.AgentRequest) (*models.AgentResult, error) {
	if req.Topic == "" {
		req.Topic = models.TopicAutoPolicyMonitor
	}
	if req.ContextVariables == nil {
		req.ContextVariables = map[string]string{}
	}

	b, ok := c.current()
	if !ok {
		return nil, fmt.Errorf("%w: salesforce not authenticated", models.ErrAgentUnavailable)
	}

	result, err := b.invoke(ctx, req)
	if err != nil {
		c.logger.Error("Error invoking agent", zap.String("topic", req.Topic), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// CreateIncident records an incident and returns its id. It never fails:
// mock mode and any failure both yield a synthetic placeholder id.
func (c *Client) CreateIncident(ctx context.Context, incident *models.Incident) string {
	b, ok := c.current()
	if !ok {
		c.logger.Error("Error logging compliance incident: salesforce connection not initialized",
			zap.Strings("types", incident.Types))
		return fmt.Sprintf("mock-error-id-%d", c.now().UnixMilli())
	}

	id, err := b.createIncident(ctx, incident)
	if err != nil {
		c.logger.Error("Error logging compliance incident",
			zap.Strings("types", incident.Types),
			zap.Stringer("severity", incident.Severity),
			zap.Error(err))
		return fmt.Sprintf("mock-error-id-%d", c.now().UnixMilli())
	}
	return id
}
