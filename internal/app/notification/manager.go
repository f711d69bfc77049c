// Package notification fans render batches out to subscribed streams.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/versionbox/internal/app/render"
)

// DefaultSendTimeout bounds a single stream send.
const DefaultSendTimeout = 500 * time.Millisecond

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(*structpb.Struct) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	topic  string
	stream Stream
	done   chan struct{}

	sendMu sync.Mutex // streams do not support concurrent sends
}

// Manager manages notification subscriptions keyed by topic.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sendTimeout   time.Duration
}

// NewManager creates a new notification manager.
func NewManager(sendTimeout time.Duration) *Manager {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   sendTimeout,
	}
}

// Subscribe adds a subscription to a topic.
// The returned channel is closed when the subscription ends.
func (m *Manager) Subscribe(topic string, stream Stream) (string, <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id:     id,
		topic:  topic,
		stream: stream,
		done:   make(chan struct{}),
	}
	m.subscriptions[id] = sub
	return id, sub.done
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(subscriptionID)
}

// UnsubscribeTopic removes every subscription of a topic and returns how many were removed.
func (m *Manager) UnsubscribeTopic(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, sub := range m.subscriptions {
		if sub.topic == topic {
			m.removeLocked(id)
			n++
		}
	}
	return n
}

func (m *Manager) removeLocked(id string) {
	sub, ok := m.subscriptions[id]
	if !ok {
		return
	}
	delete(m.subscriptions, id)
	close(sub.done)
}

// Publish sends a message to every subscriber of a topic and returns how many received it.
// Each send runs in its own goroutine with a timeout; subscribers whose send fails are dropped.
func (m *Manager) Publish(topic string, msg *structpb.Struct) int {
	m.mu.RLock()
	// Copy subscriptions to avoid holding lock during sends
	subs := make([]*subscription, 0)
	for _, sub := range m.subscriptions {
		if sub.topic == topic {
			subs = append(subs, sub)
		}
	}
	m.mu.RUnlock()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
		failed    []string
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				s.sendMu.Lock()
				defer s.sendMu.Unlock()
				done <- s.stream.Send(msg)
			}()

			select {
			case err := <-done:
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					zlog.Debug().Msgf("notification: send to %s failed: %v", s.id, err)
					failed = append(failed, s.id)
					return
				}
				delivered++
			case <-ctx.Done():
				zlog.Debug().Msgf("notification: send to %s timed out", s.id)
			}
		}(sub)
	}
	wg.Wait()

	for _, id := range failed {
		m.Unsubscribe(id)
	}
	return delivered
}

// SubscriberCount returns the number of subscribers of a topic.
func (m *Manager) SubscriberCount(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, sub := range m.subscriptions {
		if sub.topic == topic {
			n++
		}
	}
	return n
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.subscriptions {
		m.removeLocked(id)
	}
}

// NewBatch builds the wire message for one batch of render commands.
func NewBatch(seq uint64, session string, cmds []render.Command) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(map[string]any{
		"seq":      float64(seq),
		"session":  session,
		"commands": render.Wire(cmds),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode render batch")
	}
	return msg, nil
}
