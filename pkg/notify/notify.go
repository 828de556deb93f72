// Package notify delivers assignment notifications after the owning
// transaction has committed. Delivery is best effort: a failed or dropped
// notification never affects the write that triggered it.
package notify

import (
	"context"
	"log"
)

// Messenger is the outbound side; linemsg.Client satisfies it.
type Messenger interface {
	NotifyAssignment(ctx context.Context, lineUserID, cardTitle, itemText string) error
}

// Event is one committed assignment to announce.
type Event struct {
	LineUserID string
	CardTitle  string
	ItemText   string
}

type Dispatcher struct {
	messenger Messenger
	events    chan Event
}

func NewDispatcher(m Messenger, buffer int) *Dispatcher {
	return &Dispatcher{
		messenger: m,
		events:    make(chan Event, buffer),
	}
}

// Enqueue hands off an event without blocking the request path. When the
// buffer is full the event is dropped and logged.
func (d *Dispatcher) Enqueue(e Event) {
	select {
	case d.events <- e:
	default:
		log.Printf("notify: queue full, dropping assignment notification for %s", e.LineUserID)
	}
}

// Run consumes events until ctx is canceled. Start it once from main.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.events:
			if err := d.messenger.NotifyAssignment(ctx, e.LineUserID, e.CardTitle, e.ItemText); err != nil {
				log.Printf("notify: failed to send assignment notification: %v", err)
			}
		}
	}
}
