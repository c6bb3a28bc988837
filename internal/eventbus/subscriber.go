package eventbus

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/report"
)

// ContentScanner runs the classification chain.
type ContentScanner interface {
	Scan(ctx context.Context, content string) []models.Issue
}

type ScanRequest struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

type ScanReply struct {
	Issues   []models.Issue  `json:"issues"`
	Severity models.Severity `json:"severity"`
	Error    string          `json:"error,omitempty"`
}

// Subscriber answers scan requests from other services over NATS
// request/reply.
type Subscriber struct {
	conn    *nats.Conn
	scanSub *nats.Subscription
	scanner ContentScanner
	logger  *zap.Logger
}

// NewSubscriber connects to NATS for scan requests.
func NewSubscriber(natsURL string, scanner ContentScanner, logger *zap.Logger) (*Subscriber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := connect(natsURL, "compliance-auditor-subscriber")
	if err != nil {
		return nil, err
	}

	logger.Info("Subscriber connected to NATS", zap.String("url", natsURL))

	return &Subscriber{
		conn:    conn,
		scanner: scanner,
		logger:  logger.Named("eventbus"),
	}, nil
}

// Start subscribes to scan requests and replies on each message.
func (s *Subscriber) Start() error {
	var err error

	s.scanSub, err = s.conn.Subscribe(SubjectScanRequests, func(msg *nats.Msg) {
		reply := s.handleScanRequest(msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			s.logger.Error("Failed to reply to scan request", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("Subscribed", zap.String("subject", SubjectScanRequests))
	return nil
}

func (s *Subscriber) handleScanRequest(data []byte) []byte {
	s.logger.Debug("Received scan request", zap.Int("bytes", len(data)))

	var reply ScanReply

	var request ScanRequest
	if err := json.Unmarshal(data, &request); err != nil {
		s.logger.Warn("Failed to unmarshal scan request", zap.Error(err))
		reply.Error = "invalid scan request"
		reply.Issues = []models.Issue{}
	} else {
		reply.Issues = s.scanner.Scan(context.Background(), request.Content)
		reply.Severity = report.Summarize(reply.Issues).Severity
		s.logger.Info("Scan request processed",
			zap.String("source", request.Source),
			zap.Int("issues_found", len(reply.Issues)))
	}

	out, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal scan reply", zap.Error(err))
		return []byte(`{"issues":[],"error":"internal error"}`)
	}
	return out
}

// Close unsubscribes and drops the NATS connection.
func (s *Subscriber) Close() {
	if s.scanSub != nil {
		_ = s.scanSub.Unsubscribe()
		s.scanSub = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.logger.Info("Subscriber disconnected from NATS")
	}
}
