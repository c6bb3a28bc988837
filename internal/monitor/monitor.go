// Package monitor reacts to channel messages and shared files: it scans the
// content, notifies the author and records an incident for every positive
// scan.
package monitor

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/detector"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/eventbus"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/incident"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/report"
)

type ContentScanner interface {
	Scan(ctx context.Context, content string) []models.Issue
}

// Notifier delivers direct messages and resolves display names.
type Notifier interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
	RealName(ctx context.Context, userID string) (string, error)
}

// FileFetcher downloads the text body of a shared file.
type FileFetcher interface {
	Download(ctx context.Context, url string) (string, error)
}

// IncidentRecorder never fails; failures come back as placeholder ids.
type IncidentRecorder interface {
	CreateIncident(ctx context.Context, incident *models.Incident) string
}

type EventPublisher interface {
	PublishIncident(event *eventbus.IncidentEvent) error
}

// Message is a channel message event.
type Message struct {
	User     string
	Channel  string
	Text     string
	TS       string
	BotID    string
	ThreadTS string
}

// File is a shared file event joined with its metadata.
type File struct {
	ID         string
	Name       string
	Mimetype   string
	URLPrivate string
	Permalink  string
	User       string
	Channel    string
}

type Monitor struct {
	scanner   ContentScanner
	notifier  Notifier
	fetcher   FileFetcher
	recorder  IncidentRecorder
	publisher EventPublisher
	logger    *zap.Logger

	wg sync.WaitGroup
}

// New wires a monitor. publisher may be nil when no event bus is
// configured.
func New(scanner ContentScanner, notifier Notifier, fetcher FileFetcher, recorder IncidentRecorder, publisher EventPublisher, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		scanner:   scanner,
		notifier:  notifier,
		fetcher:   fetcher,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger.Named("monitor"),
	}
}

// HandleMessage scans an ambient channel message. Bot messages and thread
// replies are ignored.
func (m *Monitor) HandleMessage(ctx context.Context, msg Message) []models.Issue {
	if msg.BotID != "" || msg.ThreadTS != "" {
		return nil
	}

	issues := m.scanner.Scan(ctx, msg.Text)
	if len(issues) == 0 {
		return issues
	}

	name, err := m.notifier.RealName(ctx, msg.User)
	if err != nil {
		m.logger.Warn("Failed to look up user", zap.String("user", msg.User), zap.Error(err))
	}

	m.notify(msg.User, report.MessageNotification(name, msg.Channel, issues))

	inc := incident.ForMessage(issues, msg.User, msg.Channel, msg.TS)
	m.record(ctx, inc, issues, "message")

	m.logger.Info("Compliance issue detected and notification sent",
		zap.String("channel", msg.Channel),
		zap.String("user", msg.User),
		zap.Strings("issue_types", models.Types(issues)))

	return issues
}

// HandleFile scans a shared file. Text-like files are downloaded and
// scanned; everything else, and any file that fails to download, is judged
// by its name.
func (m *Monitor) HandleFile(ctx context.Context, file File) []models.Issue {
	m.logger.Info("Processing file share",
		zap.String("file", file.Name),
		zap.String("mimetype", file.Mimetype),
		zap.String("user", file.User),
		zap.String("channel", file.Channel))

	if !scannable(file.Mimetype) {
		return m.checkFileName(ctx, file)
	}

	content := "Filename: " + file.Name
	if file.URLPrivate != "" {
		body, err := m.fetcher.Download(ctx, file.URLPrivate)
		if err != nil {
			m.logger.Error("Error downloading file content", zap.String("file", file.Name), zap.Error(err))
			return m.checkFileName(ctx, file)
		}
		content = body
		m.logger.Info("File content downloaded", zap.Int("content_length", len(content)))
	}

	issues := append([]models.Issue(nil), m.scanner.Scan(ctx, content)...)
	issues = detector.SupplementFileNameIssues(file.Name, issues)

	if len(issues) == 0 {
		m.logger.Info("No compliance issues detected in file content", zap.String("file", file.Name))
		return issues
	}

	m.notify(file.User, report.FileNotification(file.Name, issues))

	inc := incident.ForFile(file.Name, file.Permalink, issues, file.User, file.Channel)
	m.record(ctx, inc, issues, "file")

	return issues
}

func (m *Monitor) checkFileName(ctx context.Context, file File) []models.Issue {
	issue := detector.FileNameIssue(file.Name)
	if issue == nil {
		return nil
	}
	issues := []models.Issue{*issue}

	m.notify(file.User, report.FileNameNotification(file.Name, *issue))

	inc := incident.ForFileName(file.Name, file.Permalink, *issue, file.User, file.Channel)
	m.record(ctx, inc, issues, "file_name")

	m.logger.Info("Compliance issue detected from filename",
		zap.String("file", file.Name),
		zap.String("user", file.User),
		zap.Strings("issue_types", models.Types(issues)))

	return issues
}

// notify sends the direct message in the background. Delivery never blocks
// or fails incident recording.
func (m *Monitor) notify(userID, text string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		if err := m.notifier.SendDirectMessage(context.Background(), userID, text); err != nil {
			m.logger.Error("Error sending notification message", zap.String("user", userID), zap.Error(err))
		}
	}()
}

func (m *Monitor) record(ctx context.Context, inc *models.Incident, issues []models.Issue, source string) {
	id := m.recorder.CreateIncident(ctx, inc)

	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishIncident(eventbus.NewIncidentEvent(id, inc, issues, source)); err != nil {
		m.logger.Error("Failed to publish incident event", zap.String("incident_id", id), zap.Error(err))
	}
}

// Wait blocks until in-flight notifications finish.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func scannable(mimetype string) bool {
	for _, kind := range []string{"text", "csv", "json", "plain"} {
		if strings.Contains(mimetype, kind) {
			return true
		}
	}
	return false
}
