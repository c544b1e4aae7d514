package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
	coremon "github.com/canada7700/finish-line-calendar-app-sub000/core/monitoring"
	coremqtt "github.com/canada7700/finish-line-calendar-app-sub000/core/mqtt"
	"github.com/canada7700/finish-line-calendar-app-sub000/internal/eventbus"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// Envelope is the JSON document sent for every forwarded event.
type Envelope struct {
	MessageID string          `json:"message_id"`
	Topic     string          `json:"topic"`
	SentAt    time.Time       `json:"sent_at"`
	Event     json.RawMessage `json:"event"`
}

// EventPublisher forwards bus events to MQTT as Envelopes on
// "<prefix>/<event topic>".
type EventPublisher struct {
	client  Client
	prefix  string
	log     logger.Logger
	monitor coremon.Monitor
	now     func() time.Time
	newID   func() string
}

// NewEventPublisher wraps client. An empty prefix publishes on the bare event topic.
func NewEventPublisher(client Client, prefix string, log logger.Logger, mon coremon.Monitor) *EventPublisher {
	return &EventPublisher{
		client:  client,
		prefix:  strings.Trim(prefix, "/"),
		log:     logger.OrNop(log),
		monitor: coremon.OrNop(mon),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// TopicFor returns the broker topic of ev.
func (p *EventPublisher) TopicFor(ev events.Event) string {
	if p.prefix == "" {
		return ev.Topic()
	}
	return p.prefix + "/" + ev.Topic()
}

// PublishEvent encodes ev and publishes it, returning the message id.
func (p *EventPublisher) PublishEvent(ctx context.Context, ev events.Event) (string, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", ev.Topic(), err)
	}
	env := Envelope{
		MessageID: p.newID(),
		Topic:     ev.Topic(),
		SentAt:    p.now().UTC(),
		Event:     body,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	topic := p.TopicFor(ev)
	if err := p.client.Publish(ctx, topic, payload); err != nil {
		p.monitor.CaptureException(err, map[string]string{"topic": topic, "message_id": env.MessageID})
		return "", err
	}
	return env.MessageID, nil
}

// Start forwards every bus event until ctx is canceled or the bus closes.
// Publish failures are logged and do not stop forwarding.
func (p *EventPublisher) Start(ctx context.Context, bus eventbus.EventBus) {
	if bus == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		eventbus.Forward(ctx, sub, func(ev events.Event) {
			if _, err := p.PublishEvent(ctx, ev); err != nil {
				p.log.Warnf("forward %s: %v", ev.Topic(), err)
			}
		})
	}()
}

// Message is a payload captured by MockClient.
type Message struct {
	Topic   string
	Payload []byte
}

// MockClient records publishes in memory. Topics listed in FailTopics fail.
type MockClient struct {
	mu         sync.Mutex
	Messages   []Message
	FailTopics map[string]bool
	closed     bool
}

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{FailTopics: map[string]bool{}}
}

func (m *MockClient) Publish(_ context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return coremqtt.ErrNotConnected
	}
	if m.FailTopics[topic] {
		return fmt.Errorf("publish to %s failed", topic)
	}
	m.Messages = append(m.Messages, Message{Topic: topic, Payload: append([]byte(nil), payload...)})
	return nil
}

func (m *MockClient) Disconnect() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// Sent returns a copy of the recorded messages.
func (m *MockClient) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Messages...)
}
