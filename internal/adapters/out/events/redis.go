// Package events delivers production events to observers: a Redis channel
// for other services, an in-process bus for local subscribers, and a fan-out
// that combines several publishers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"batchplant/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel events are published on.
const DefaultChannel = "batchplant.events"

// Message is the JSON form of a production event.
type Message struct {
	Type    string    `json:"type"`
	OrderID string    `json:"order_id"`
	RowSeq  int       `json:"row_seq,omitempty"`
	RunID   string    `json:"run_id,omitempty"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}

// MessageFromEvent maps a domain event to its wire form.
func MessageFromEvent(e ports.ProductionEvent) Message {
	m := Message{
		Type:    string(e.Type),
		OrderID: e.OrderID.String(),
		RowSeq:  e.RowSeq,
		Status:  e.Status,
		At:      e.At.UTC(),
	}
	if e.RunID != nil {
		m.RunID = e.RunID.String()
	}
	return m
}

// RedisPublisher publishes events with PUBLISH on a single channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// NewRedisClient opens a client for addr. The connection is established lazily.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (p *RedisPublisher) Publish(ctx context.Context, event ports.ProductionEvent) error {
	payload, err := json.Marshal(MessageFromEvent(event))
	if err != nil {
		return err
	}
	if err = p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, p.channel, err)
	}
	return nil
}
