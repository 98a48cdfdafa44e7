// Package redisstream persists activity events to a Redis Stream. This is
// the primary backend: the stream doubles as the fan-out point for live
// consumers and the history store.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vigil/internal/activity"
)

const (
	// DefaultStream is the activity history stream key.
	DefaultStream = "stream.activity"
	// DefaultMaxLen bounds the stream; trimming is approximate to keep
	// XADD cheap.
	DefaultMaxLen = 1_000_000
)

type Store struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

type Option func(*Store)

func WithStream(name string) Option {
	return func(s *Store) { s.stream = name }
}

func WithMaxLen(n int64) Option {
	return func(s *Store) { s.maxLen = n }
}

func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client, stream: DefaultStream, maxLen: DefaultMaxLen}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append writes the event as a single stream entry. The envelope travels
// as one JSON field so consumers decode it in a single step; type and
// scope are duplicated as top-level fields for cheap XRANGE filtering.
func (s *Store) Append(ctx context.Context, event activity.StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode activity event: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":          uuid.NewString(),
			"type":        string(event.Type),
			"event_scope": string(event.EventScope),
			"event":       payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}
