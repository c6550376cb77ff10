package cycle

import (
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/google/uuid"
)

type EventType string

const (
	EventStarted  EventType = "cycle_started"
	EventState    EventType = "cycle_state"
	EventFinished EventType = "cycle_finished"
)

type Event struct {
	Type      EventType            `json:"type"`
	CycleID   uuid.UUID            `json:"cycle_id"`
	From      machine.State        `json:"from,omitempty"`
	To        machine.State        `json:"to,omitempty"`
	Status    *types.LaundryStatus `json:"status,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Subscriber receives cycle events synchronously; implementations must not block.
type Subscriber interface {
	Publish(event Event)
}

type SubscriberFunc func(event Event)

func (f SubscriberFunc) Publish(event Event) {
	f(event)
}

func (r *Runner) Subscribe(sub Subscriber) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	r.subscribers = append(r.subscribers, sub)
}

func (r *Runner) publish(event Event) {
	r.subsMu.RLock()
	defer r.subsMu.RUnlock()

	for _, sub := range r.subscribers {
		sub.Publish(event)
	}
}
