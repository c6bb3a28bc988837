package slackbot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/monitor"
)

// Client performs the outbound Slack calls: direct messages, thread
// replies, response_url replies and file downloads.
type Client struct {
	api    *slack.Client
	logger *zap.Logger
}

func NewClient(botToken string, logger *zap.Logger, options ...slack.Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:    slack.New(botToken, options...),
		logger: logger.Named("slack"),
	}
}

func (c *Client) SendDirectMessage(ctx context.Context, userID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, userID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to send direct message: %w", err)
	}
	return nil
}

func (c *Client) RealName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}
	if user.RealName != "" {
		return user.RealName, nil
	}
	return user.Profile.RealName, nil
}

func (c *Client) ReplyInThread(ctx context.Context, channel, threadTS, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS))
	if err != nil {
		return fmt.Errorf("failed to reply in thread: %w", err)
	}
	return nil
}

// Respond posts an ephemeral reply to a slash command's response_url.
func (c *Client) Respond(ctx context.Context, responseURL, text string) error {
	err := slack.PostWebhookContext(ctx, responseURL, &slack.WebhookMessage{
		Text:         text,
		ResponseType: "ephemeral",
	})
	if err != nil {
		return fmt.Errorf("failed to respond to command: %w", err)
	}
	return nil
}

// Download fetches a private file URL with the bot token.
func (c *Client) Download(ctx context.Context, url string) (string, error) {
	var buf bytes.Buffer
	if err := c.api.GetFileContext(ctx, url, &buf); err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	return buf.String(), nil
}

// FileInfo resolves a file_shared event into the monitor's file view. The
// event's user and channel win over the file metadata.
func (c *Client) FileInfo(ctx context.Context, fileID, userID, channelID string) (monitor.File, error) {
	file, _, _, err := c.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return monitor.File{}, fmt.Errorf("failed to get file info: %w", err)
	}

	if userID == "" {
		userID = file.User
	}
	if channelID == "" && len(file.Channels) > 0 {
		channelID = file.Channels[0]
	}

	return monitor.File{
		ID:         file.ID,
		Name:       file.Name,
		Mimetype:   file.Mimetype,
		URLPrivate: file.URLPrivate,
		Permalink:  file.Permalink,
		User:       userID,
		Channel:    channelID,
	}, nil
}
