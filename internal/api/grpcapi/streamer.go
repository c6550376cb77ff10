package grpcapi

import (
	"sync"

	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
)

// EventStreamer fans runner events out to WatchCycles streams.
type EventStreamer struct {
	mu          sync.RWMutex
	subscribers []chan cycle.Event
	closed      bool
}

func NewEventStreamer() *EventStreamer {
	return &EventStreamer{}
}

func (s *EventStreamer) Subscribe() <-chan cycle.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan cycle.Event, 100)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *EventStreamer) Unsubscribe(ch <-chan cycle.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			break
		}
	}
}

// Close ends every open subscription. Later subscribers get a closed channel.
func (s *EventStreamer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
}

func (s *EventStreamer) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Publish implements cycle.Subscriber. Full subscriber buffers drop the event.
func (s *EventStreamer) Publish(event cycle.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

var _ cycle.Subscriber = (*EventStreamer)(nil)
