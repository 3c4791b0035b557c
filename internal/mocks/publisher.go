package mocks

import (
	"context"
	"sync"
)

// PublisherMock records published events for assertions.
type PublisherMock struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

// PublishedEvent is one recorded Publish call.
type PublishedEvent struct {
	RoutingKey string
	Event      any
	Headers    map[string]string
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, PublishedEvent{RoutingKey: routingKey, Event: event, Headers: headers})
	return nil
}

func (m *PublisherMock) Close() error {
	return nil
}

// Published returns a snapshot of recorded events.
func (m *PublisherMock) Published() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
