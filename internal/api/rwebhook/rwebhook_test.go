package rwebhook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/stretchr/testify/require"

	"taskboard-backend/internal/api/rwebhook"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mchecklist"
	"taskboard-backend/pkg/testutil"
)

type fakeMessenger struct {
	replies []string
	pushes  []string
}

func (f *fakeMessenger) ReplyText(ctx context.Context, replyToken, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeMessenger) PushText(ctx context.Context, lineUserID, text string) error {
	f.pushes = append(f.pushes, text)
	return nil
}

type fakeParser struct {
	events []*linebot.Event
	err    error
}

func (f fakeParser) ParseWebhook(r *http.Request) ([]*linebot.Event, error) {
	return f.events, f.err
}

func textEvent(lineUserID, text string) *linebot.Event {
	return &linebot.Event{
		Type:       linebot.EventTypeMessage,
		ReplyToken: "reply-token",
		Source:     &linebot.EventSource{UserID: lineUserID},
		Message:    linebot.NewTextMessage(text),
	}
}

func TestReceiveInvalidSignature(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{err: linebot.ErrInvalidSignature}, msg, services.Us, services.Chs)

	req := httptest.NewRequest(http.MethodPost, "/api/line/webhook", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	handler.Receive(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, msg.replies)
}

func TestUnknownSenderGetsLoginPrompt(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{}, msg, services.Us, services.Chs)

	require.NoError(t, handler.HandleEvent(ctx, textEvent("Ustranger", "my tasks")))
	require.Len(t, msg.replies, 1)
	require.Contains(t, msg.replies[0], "Log in")
	require.Empty(t, msg.pushes)
}

func TestMyTasksCommand(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	boardID := idwrap.NewNow()
	laneID := idwrap.NewNow()
	services.CreateTempBoard(t, ctx, boardID, laneID)
	cards := services.SeedCards(t, ctx, laneID, "Ship it")

	alice, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "")
	require.NoError(t, err)

	item := mchecklist.ChecklistItem{ID: idwrap.NewNow(), CardID: cards[0].ID, Text: "write notes", AssignedTo: &alice.ID}
	require.NoError(t, services.Chs.CreateItem(ctx, &item))

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{}, msg, services.Us, services.Chs)

	require.NoError(t, handler.HandleEvent(ctx, textEvent("U123", "My Tasks")))
	require.Len(t, msg.replies, 1)
	require.Len(t, msg.pushes, 1)
	require.Contains(t, msg.pushes[0], "write notes")
	require.Contains(t, msg.pushes[0], "Ship it")
}

func TestDoneCommandCompletesTask(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	boardID := idwrap.NewNow()
	laneID := idwrap.NewNow()
	services.CreateTempBoard(t, ctx, boardID, laneID)
	cards := services.SeedCards(t, ctx, laneID, "Ship it")

	alice, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "")
	require.NoError(t, err)

	item := mchecklist.ChecklistItem{ID: idwrap.NewNow(), CardID: cards[0].ID, Text: "write notes", AssignedTo: &alice.ID}
	require.NoError(t, services.Chs.CreateItem(ctx, &item))

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{}, msg, services.Us, services.Chs)

	// Lowercased id in the message still resolves.
	require.NoError(t, handler.HandleEvent(ctx, textEvent("U123", "done "+strings.ToLower(item.ID.String()))))
	require.Len(t, msg.replies, 1)
	require.Contains(t, msg.replies[0], "done")

	got, err := services.Chs.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, got.Completed)
}

func TestDoneCommandRejectsOtherOwners(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	boardID := idwrap.NewNow()
	laneID := idwrap.NewNow()
	services.CreateTempBoard(t, ctx, boardID, laneID)
	cards := services.SeedCards(t, ctx, laneID, "Ship it")

	alice, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "")
	require.NoError(t, err)
	_, err = services.Us.UpsertByLineUserID(ctx, "U456", "Bob", "")
	require.NoError(t, err)

	item := mchecklist.ChecklistItem{ID: idwrap.NewNow(), CardID: cards[0].ID, Text: "write notes", AssignedTo: &alice.ID}
	require.NoError(t, services.Chs.CreateItem(ctx, &item))

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{}, msg, services.Us, services.Chs)

	require.NoError(t, handler.HandleEvent(ctx, textEvent("U456", "done "+item.ID.String())))
	require.Len(t, msg.replies, 1)
	require.Contains(t, msg.replies[0], "isn't assigned to you")

	got, err := services.Chs.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, got.Completed)
}

func TestDoneCommandBadTaskID(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	_, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "")
	require.NoError(t, err)

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{}, msg, services.Us, services.Chs)

	require.NoError(t, handler.HandleEvent(ctx, textEvent("U123", "done not-a-ulid")))
	require.Len(t, msg.replies, 1)
	require.Contains(t, msg.replies[0], "couldn't find that task")
}

func TestUnknownCommandGetsHelp(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	_, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "")
	require.NoError(t, err)

	msg := &fakeMessenger{}
	handler := rwebhook.New(fakeParser{}, msg, services.Us, services.Chs)

	require.NoError(t, handler.HandleEvent(ctx, textEvent("U123", "hello?")))
	require.Len(t, msg.replies, 1)
	require.Contains(t, msg.replies[0], "my tasks")
}
