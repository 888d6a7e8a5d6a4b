package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/pkg/metrics"
)

const (
	// StreamName is the name of the turn-events stream.
	StreamName = "TURNS"

	// SubjectPrefix is the prefix for all turn subjects.
	SubjectPrefix = "turns"
)

// Publisher publishes recorded turns to JetStream.
type Publisher struct {
	client *Client
}

// NewPublisher creates a turn-event publisher.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the turn-events stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Recorded chat turns for analytics consumers",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// TurnSubject returns the subject for one session's turn events.
func TurnSubject(sessionID, intent string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sessionID, intent)
}

// PublishTurn publishes a recorded turn. Implements conversation.Publisher.
func (p *Publisher) PublishTurn(ctx context.Context, sessionID string, turn *model.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	if _, err := p.client.JetStream().Publish(ctx, TurnSubject(sessionID, turn.Intent), data); err != nil {
		return fmt.Errorf("failed to publish turn: %w", err)
	}

	metrics.TurnEventsPublished.Inc()
	return nil
}
