package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskboard-backend/pkg/notify"
)

type fakeMessenger struct {
	mu   sync.Mutex
	sent []notify.Event
	err  error
	done chan struct{}
}

func newFakeMessenger(expect int) *fakeMessenger {
	f := &fakeMessenger{done: make(chan struct{}, expect)}
	return f
}

func (f *fakeMessenger) NotifyAssignment(ctx context.Context, lineUserID, cardTitle, itemText string) error {
	f.mu.Lock()
	f.sent = append(f.sent, notify.Event{LineUserID: lineUserID, CardTitle: cardTitle, ItemText: itemText})
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.err
}

func (f *fakeMessenger) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestDispatcherDelivers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messenger := newFakeMessenger(1)
	dispatcher := notify.NewDispatcher(messenger, 4)
	go dispatcher.Run(ctx)

	dispatcher.Enqueue(notify.Event{LineUserID: "U123", CardTitle: "Ship it", ItemText: "write notes"})
	messenger.wait(t)

	messenger.mu.Lock()
	defer messenger.mu.Unlock()
	require.Len(t, messenger.sent, 1)
	require.Equal(t, "U123", messenger.sent[0].LineUserID)
	require.Equal(t, "Ship it", messenger.sent[0].CardTitle)
}

func TestDispatcherSurvivesSendFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messenger := newFakeMessenger(2)
	messenger.err = errors.New("line is down")
	dispatcher := notify.NewDispatcher(messenger, 4)
	go dispatcher.Run(ctx)

	dispatcher.Enqueue(notify.Event{LineUserID: "U123"})
	dispatcher.Enqueue(notify.Event{LineUserID: "U456"})
	messenger.wait(t)
	messenger.wait(t)

	messenger.mu.Lock()
	defer messenger.mu.Unlock()
	require.Len(t, messenger.sent, 2)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	// No consumer running: the buffer fills and further events are dropped
	// without blocking.
	messenger := newFakeMessenger(0)
	dispatcher := notify.NewDispatcher(messenger, 1)

	done := make(chan struct{})
	go func() {
		dispatcher.Enqueue(notify.Event{LineUserID: "U1"})
		dispatcher.Enqueue(notify.Event{LineUserID: "U2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}
}
