package slackbot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/audit"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/monitor"
)

const (
	EventsPath   = "/slack/events"
	CommandsPath = "/slack/commands"

	auditCommand = "/compliance-audit"
	maxBodyBytes = 1 << 20
)

type Monitor interface {
	HandleMessage(ctx context.Context, msg monitor.Message) []models.Issue
	HandleFile(ctx context.Context, file monitor.File) []models.Issue
}

type Auditor interface {
	ProcessCommand(ctx context.Context, cmd audit.Command) string
	ProcessMention(ctx context.Context, mention audit.Mention) string
}

// Responder is the outbound side the handler needs.
type Responder interface {
	ReplyInThread(ctx context.Context, channel, threadTS, text string) error
	Respond(ctx context.Context, responseURL, text string) error
	FileInfo(ctx context.Context, fileID, userID, channelID string) (monitor.File, error)
}

// Handler serves the Slack Events API and slash command endpoints. Requests
// are verified and acknowledged at once; the work runs in the background.
type Handler struct {
	signingSecret string
	monitor       Monitor
	auditor       Auditor
	responder     Responder
	logger        *zap.Logger

	wg sync.WaitGroup
}

func NewHandler(signingSecret string, mon Monitor, auditor Auditor, responder Responder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		signingSecret: signingSecret,
		monitor:       mon,
		auditor:       auditor,
		responder:     responder,
		logger:        logger.Named("slack"),
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(EventsPath, h.handleEvents)
	mux.HandleFunc(CommandsPath, h.handleCommand)
	return mux
}

// Wait blocks until background event work has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil, false
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		h.logger.Warn("Rejected request without signature", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if _, err := verifier.Write(body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil, false
	}
	if err := verifier.Ensure(); err != nil {
		h.logger.Warn("Rejected request with bad signature", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	return body, true
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r)
	if !ok {
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		h.logger.Warn("Failed to parse event", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		w.WriteHeader(http.StatusOK)
		h.dispatch(event.InnerEvent)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) dispatch(inner slackevents.EventsAPIInnerEvent) {
	switch ev := inner.Data.(type) {
	case *slackevents.AppMentionEvent:
		h.background("app_mention", func(ctx context.Context) {
			h.handleMention(ctx, ev)
		}, func(ctx context.Context) {
			h.reply(ctx, ev.Channel, ev.TimeStamp, audit.MentionErrorReply)
		})

	case *slackevents.MessageEvent:
		msg := monitor.Message{
			User:     ev.User,
			Channel:  ev.Channel,
			Text:     ev.Text,
			TS:       ev.TimeStamp,
			BotID:    ev.BotID,
			ThreadTS: ev.ThreadTimeStamp,
		}
		h.background("message", func(ctx context.Context) {
			h.monitor.HandleMessage(ctx, msg)
		}, nil)

	case *slackevents.FileSharedEvent:
		h.background("file_shared", func(ctx context.Context) {
			file, err := h.responder.FileInfo(ctx, ev.FileID, ev.UserID, ev.ChannelID)
			if err != nil {
				h.logger.Error("Error handling file_shared event", zap.String("file_id", ev.FileID), zap.Error(err))
				return
			}
			h.monitor.HandleFile(ctx, file)
		}, nil)

	default:
		h.logger.Debug("Ignoring event", zap.String("type", inner.Type))
	}
}

func (h *Handler) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	if !audit.IsAuditRequest(ev.Text) {
		h.reply(ctx, ev.Channel, ev.TimeStamp, audit.GreetingReply)
		return
	}

	h.reply(ctx, ev.Channel, ev.TimeStamp, audit.PendingMentionReply)
	result := h.auditor.ProcessMention(ctx, audit.Mention{
		Channel: ev.Channel,
		User:    ev.User,
		Text:    ev.Text,
	})
	h.reply(ctx, ev.Channel, ev.TimeStamp, result)
}

func (h *Handler) reply(ctx context.Context, channel, ts, text string) {
	if err := h.responder.ReplyInThread(ctx, channel, ts, text); err != nil {
		h.logger.Error("Failed to reply to mention", zap.String("channel", channel), zap.Error(err))
	}
}

type commandAck struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r)
	if !ok {
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if cmd.Command != auditCommand {
		h.logger.Warn("Unknown command", zap.String("command", cmd.Command))
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(commandAck{ResponseType: "ephemeral", Text: audit.PendingCommandReply})

	h.background("command", func(ctx context.Context) {
		result := h.auditor.ProcessCommand(ctx, audit.Command{
			ChannelID: cmd.ChannelID,
			UserID:    cmd.UserID,
			Text:      cmd.Text,
		})
		if err := h.responder.Respond(ctx, cmd.ResponseURL, result); err != nil {
			h.logger.Error("Failed to send command result", zap.Error(err))
		}
	}, func(ctx context.Context) {
		_ = h.responder.Respond(ctx, cmd.ResponseURL, audit.CommandErrorReply)
	})
}

// background runs work detached from the request. A panic is logged and,
// when onPanic is set, answered with the generic apology.
func (h *Handler) background(kind string, work, onPanic func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("Error handling event", zap.String("kind", kind), zap.Any("panic", r))
				if onPanic != nil {
					onPanic(ctx)
				}
			}
		}()

		work(ctx)
	}()
}
