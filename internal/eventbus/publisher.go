package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const (
	SubjectIncidentCreated = "compliance.incidents.created"
	SubjectScanRequests    = "compliance.scan.requests"
)

// IncidentEvent announces one recorded incident to downstream consumers.
type IncidentEvent struct {
	EventID    string           `json:"event_id"`
	IncidentID string           `json:"incident_id"`
	Incident   *models.Incident `json:"incident"`
	Issues     []models.Issue   `json:"issues"`
	Source     string           `json:"source"`
	Timestamp  int64            `json:"timestamp"`
}

// NewIncidentEvent stamps a fresh event id and time.
func NewIncidentEvent(incidentID string, incident *models.Incident, issues []models.Issue, source string) *IncidentEvent {
	return &IncidentEvent{
		EventID:    uuid.NewString(),
		IncidentID: incidentID,
		Incident:   incident,
		Issues:     issues,
		Source:     source,
		Timestamp:  time.Now().Unix(),
	}
}

// Publisher sends incident events to NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func connect(natsURL, name string) (*nats.Conn, error) {
	return nats.Connect(natsURL,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second))
}

// NewPublisher connects to NATS, retrying in the background if the server is down.
func NewPublisher(natsURL string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := connect(natsURL, "compliance-auditor-publisher")
	if err != nil {
		return nil, err
	}

	logger.Info("Publisher connected to NATS", zap.String("url", natsURL))

	return &Publisher{
		conn:   conn,
		logger: logger.Named("eventbus"),
	}, nil
}

// PublishIncident sends event on the incident-created subject.
func (p *Publisher) PublishIncident(event *IncidentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	if err := p.conn.Publish(SubjectIncidentCreated, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectIncidentCreated, err)
	}

	p.logger.Info("Published incident event",
		zap.String("incident_id", event.IncidentID),
		zap.String("source", event.Source))

	return nil
}

// Close drops the NATS connection. It is safe to call twice.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
		p.logger.Info("Publisher disconnected from NATS")
	}
}

// IsConnected reports whether the NATS connection is up.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
