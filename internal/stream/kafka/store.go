// Package kafka persists activity events to a Kafka topic for deployments
// that already route their audit trail through a broker.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"vigil/internal/activity"
)

// DefaultTopic is the activity events topic.
const DefaultTopic = "vigil.activity.events"

type Store struct {
	client *kgo.Client
	topic  string
}

// New dials the brokers and returns a store producing to topic.
func New(brokers []string, topic string) (*Store, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

// Append produces the event synchronously. The acting user keys the
// record so one user's events stay ordered within a partition.
func (s *Store) Append(ctx context.Context, event activity.StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode activity event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Origin.UserID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce activity event: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}
