// Package linemsg wraps the LINE Messaging API: outbound push/reply messages
// and inbound webhook parsing (which also verifies the request signature).
package linemsg

import (
	"context"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"taskboard-backend/pkg/model/mchecklist"
)

type Client struct {
	bot *linebot.Client
}

func New(channelSecret, channelToken string) (*Client, error) {
	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, err
	}
	return &Client{bot: bot}, nil
}

// ParseWebhook validates the x-line-signature header and decodes the events.
// Returns linebot.ErrInvalidSignature for forged requests.
func (c *Client) ParseWebhook(r *http.Request) ([]*linebot.Event, error) {
	return c.bot.ParseRequest(r)
}

// NotifyAssignment pushes the task-assignment message to a user.
func (c *Client) NotifyAssignment(ctx context.Context, lineUserID, cardTitle, itemText string) error {
	text := fmt.Sprintf("New task assigned to you.\n\nCard: %s\nTask: %s", cardTitle, itemText)
	return c.PushText(ctx, lineUserID, text)
}

func (c *Client) PushText(ctx context.Context, lineUserID, text string) error {
	_, err := c.bot.PushMessage(lineUserID, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}

func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	_, err := c.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}

// FormatTaskList renders a user's pending tasks the way the bot reports them.
func FormatTaskList(tasks []mchecklist.PendingTask) string {
	if len(tasks) == 0 {
		return "You have no pending tasks. Nice work!"
	}

	msg := fmt.Sprintf("You have %d pending task(s):\n\n", len(tasks))
	for i, task := range tasks {
		msg += fmt.Sprintf("%d. %s\n   - %s\n   ID: %s\n\n", i+1, task.CardTitle, task.Text, task.ID.String())
	}
	msg += "When a task is finished, reply with:\ndone {taskId}"
	return msg
}
