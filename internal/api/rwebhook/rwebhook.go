// Package rwebhook receives LINE webhook events and runs the bot commands:
// "my tasks" lists the sender's pending checklist items, "done {taskId}"
// completes one. Signature verification happens during parsing, before any
// domain logic runs.
package rwebhook

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"taskboard-backend/internal/api"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/linemsg"
	"taskboard-backend/pkg/service/schecklist"
	"taskboard-backend/pkg/service/suser"
)

// Messenger is the outbound reply/push seam; linemsg.Client satisfies it.
type Messenger interface {
	ReplyText(ctx context.Context, replyToken, text string) error
	PushText(ctx context.Context, lineUserID, text string) error
}

// Parser decodes and signature-checks an inbound webhook request.
type Parser interface {
	ParseWebhook(r *http.Request) ([]*linebot.Event, error)
}

type WebhookHandler struct {
	parser Parser
	msg    Messenger
	us     suser.UserService
	chs    schecklist.ChecklistService
}

func New(parser Parser, msg Messenger, us suser.UserService, chs schecklist.ChecklistService) WebhookHandler {
	return WebhookHandler{parser: parser, msg: msg, us: us, chs: chs}
}

// CreateService mounts the webhook route. No auth middleware: authenticity
// comes from the channel-secret signature, not a session.
func CreateService(srv WebhookHandler) (*api.Service, error) {
	r := chi.NewRouter()
	r.Post("/api/line/webhook", srv.Receive)
	return &api.Service{Path: "/api/line/webhook", Handler: r}, nil
}

func (h WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	events, err := h.parser.ParseWebhook(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			api.WriteError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		api.WriteError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	ctx := r.Context()
	for _, event := range events {
		if err := h.HandleEvent(ctx, event); err != nil {
			log.Printf("rwebhook: event handling failed: %v", err)
		}
	}

	api.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleEvent dispatches one webhook event. Only text messages carry
// commands; everything else is ignored.
func (h WebhookHandler) HandleEvent(ctx context.Context, event *linebot.Event) error {
	if event.Type != linebot.EventTypeMessage || event.Source == nil || event.Source.UserID == "" {
		return nil
	}
	text, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		return nil
	}
	return h.handleTextMessage(ctx, event.ReplyToken, event.Source.UserID, text.Text)
}

func (h WebhookHandler) handleTextMessage(ctx context.Context, replyToken, lineUserID, text string) error {
	user, err := h.us.GetUserByLineUserID(ctx, lineUserID)
	if err != nil {
		if errors.Is(err, suser.ErrNoUserFound) {
			return h.msg.ReplyText(ctx, replyToken, "I don't know you yet. Log in on the task board first, then message me again.")
		}
		return err
	}

	trimmed := strings.TrimSpace(text)
	command := strings.ToLower(trimmed)

	switch {
	case command == "my tasks":
		tasks, err := h.chs.ListPendingByAssignee(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := h.msg.ReplyText(ctx, replyToken, "Let me check your tasks..."); err != nil {
			return err
		}
		return h.msg.PushText(ctx, lineUserID, linemsg.FormatTaskList(tasks))

	case strings.HasPrefix(command, "done "):
		return h.completeTask(ctx, replyToken, user.ID, strings.TrimSpace(trimmed[len("done "):]))

	default:
		return h.msg.ReplyText(ctx, replyToken,
			"Here is what I can do:\n\n"+
				"- my tasks: list your pending tasks\n"+
				"- done {taskId}: mark a task finished")
	}
}

func (h WebhookHandler) completeTask(ctx context.Context, replyToken string, userID idwrap.IDWrap, rawTaskID string) error {
	taskID, err := idwrap.NewText(strings.ToUpper(rawTaskID))
	if err != nil {
		return h.msg.ReplyText(ctx, replyToken, "I couldn't find that task. Double-check the task id.")
	}

	item, err := h.chs.GetItem(ctx, taskID)
	if err != nil {
		if errors.Is(err, schecklist.ErrNoChecklistItemFound) {
			return h.msg.ReplyText(ctx, replyToken, "I couldn't find that task. Double-check the task id.")
		}
		return err
	}

	if item.AssignedTo == nil || item.AssignedTo.Compare(userID) != 0 {
		return h.msg.ReplyText(ctx, replyToken, "That task isn't assigned to you.")
	}

	item.Completed = true
	if err := h.chs.UpdateItem(ctx, item); err != nil {
		return h.msg.ReplyText(ctx, replyToken, "I couldn't update that task. Please try again.")
	}

	cardTitle, err := h.chs.GetCardTitle(ctx, taskID)
	if err != nil {
		cardTitle = ""
	}
	return h.msg.ReplyText(ctx, replyToken, "Nice work, task done!\n\nCard: "+cardTitle+"\nTask: "+item.Text)
}
