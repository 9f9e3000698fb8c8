package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and by deployments that opt out
// of a database. Subscribers see local writes too, mirroring how a browser
// tab observes its own storage.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
	subs []chan Event
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.docs[key] = stored
	subs := append([]chan Event(nil), m.subs...)
	m.mu.Unlock()

	notify(subs, Event{Key: key})
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	subs := append([]chan Event(nil), m.subs...)
	m.mu.Unlock()

	notify(subs, Event{Key: key})
	return nil
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 16)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		for i, sub := range m.subs {
			if sub == ch {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func notify(subs []chan Event, ev Event) {
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than block writers.
		}
	}
}
