// Package audit answers on-demand compliance audits requested through the
// slash command or an at-mention.
package audit

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/report"
)

const (
	PendingCommandReply = "Running compliance scan, please wait..."
	PendingMentionReply = "I'm analyzing this channel for compliance issues..."
	GreetingReply       = "Hello! I'm the Compliance Auditor. You can ask me to scan channels or files for compliance issues, or ask questions about compliance policies."
	CommandErrorReply   = "Sorry, there was an error processing your request. Please try again later."
	MentionErrorReply   = "Sorry, I encountered an error while processing your request."

	fileTargetReply    = "File scanning is not implemented for direct command yet. Try uploading a file to trigger automatic scanning."
	unknownUserReply   = "I couldn't recognize the user to scan. Please try again with a valid @mention."
	targetChannel      = "channel"
	targetUser         = "user"
	targetFile         = "file"
	defaultScanType    = "general"
	auditCommandString = "audit"
)

var (
	channelMention = regexp.MustCompile(`<#([A-Z0-9]+)(?:\|.+)?>`)
	userMention    = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|.+)?>`)
)

type Invoker interface {
	Invoke(ctx context.Context, req models.AgentRequest) (*models.AgentResult, error)
}

// Command is a /compliance-audit invocation.
type Command struct {
	ChannelID string
	UserID    string
	Text      string
}

// Mention is an at-mention of the bot.
type Mention struct {
	Channel string
	User    string
	Text    string
}

type Auditor struct {
	invoker Invoker
	logger  *zap.Logger
}

// New returns an auditor. A nil invoker means the rules agent is disabled
// and audits answer with the fallback text.
func New(invoker Invoker, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{
		invoker: invoker,
		logger:  logger.Named("audit"),
	}
}

// ProcessCommand audits the channel, user or file named by the command
// text. The current channel is the default target.
func (a *Auditor) ProcessCommand(ctx context.Context, cmd Command) string {
	targetType, targetID := targetChannel, cmd.ChannelID

	switch text := cmd.Text; {
	case text == "":
	case strings.Contains(text, "<#"):
		if m := channelMention.FindStringSubmatch(text); m != nil {
			targetID = m[1]
		}
	case strings.Contains(text, targetFile):
		return fileTargetReply
	case strings.Contains(text, "<@"):
		m := userMention.FindStringSubmatch(text)
		if m == nil {
			return unknownUserReply
		}
		targetType, targetID = targetUser, m[1]
	}

	result, ok := a.invoke(ctx, models.AuditInput{
		Command:    auditCommandString,
		TargetType: targetType,
		TargetID:   targetID,
	}, cmd.ChannelID, cmd.UserID)
	if ok {
		if len(result.Issues) > 0 {
			return report.FormatIssues(result.Issues, targetType, targetID)
		}
		return fmt.Sprintf(":white_check_mark: No compliance issues found in the %s.", targetType)
	}

	return fmt.Sprintf("I've scanned the %s but couldn't perform a detailed analysis. Please upload specific files for scanning.", targetType)
}

// IsAuditRequest reports whether a mention asks for a scan.
func IsAuditRequest(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "scan") || strings.Contains(lower, "audit") || strings.Contains(lower, "check")
}

// ScanType picks the regulation a mention asks about.
func ScanType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "gdpr"):
		return "GDPR"
	case strings.Contains(lower, "hipaa"):
		return "HIPAA"
	case strings.Contains(lower, "pci"):
		return "PCI-DSS"
	case strings.Contains(lower, "security"):
		return "Info Security"
	default:
		return defaultScanType
	}
}

// ProcessMention audits the channel the bot was mentioned in.
func (a *Auditor) ProcessMention(ctx context.Context, mention Mention) string {
	scanType := ScanType(mention.Text)

	result, ok := a.invoke(ctx, models.AuditInput{
		Command:    auditCommandString,
		TargetType: targetChannel,
		TargetID:   mention.Channel,
		ScanType:   scanType,
	}, mention.Channel, mention.User)
	if ok {
		if len(result.Issues) > 0 {
			return report.FormatIssues(result.Issues, targetChannel, mention.Channel)
		}
		return fmt.Sprintf(":white_check_mark: No %s compliance issues found in this channel.", scanType)
	}

	return fmt.Sprintf("I've reviewed this channel for %s compliance issues. For detailed scanning, please share specific files for me to analyze.", scanType)
}

func (a *Auditor) invoke(ctx context.Context, input models.AuditInput, channelID, userID string) (*models.AgentResult, bool) {
	if a.invoker == nil {
		return nil, false
	}

	result, err := a.invoker.Invoke(ctx, models.AgentRequest{
		Topic: models.TopicManualComplianceAudit,
		Input: input,
		ContextVariables: map[string]string{
			"channelId": channelID,
			"userId":    userID,
		},
	})
	if err != nil {
		a.logger.Error("Error with agent for audit",
			zap.String("target_type", input.TargetType),
			zap.String("target_id", input.TargetID),
			zap.Error(err))
		return nil, false
	}
	if result == nil {
		return nil, false
	}
	return result, true
}
