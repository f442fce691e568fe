package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis pub/sub channels, one per entity type. Subscribers (dashboards, other
// instances) receive change notifications and refresh their views.
const (
	ChannelProducts   = "events:products"
	ChannelStock      = "events:stock"
	ChannelMovements  = "events:movements"
	ChannelOrders     = "events:orders"
	ChannelWarehouses = "events:warehouses"
)

// Event is the payload published on change channels.
type Event struct {
	Action   string     `json:"action"` // created | updated | deleted
	EntityID *uuid.UUID `json:"entity_id,omitempty"`
	At       time.Time  `json:"at"`
}

// EventBus publishes entity change notifications over Redis pub/sub.
// A nil EventBus is a no-op, which keeps unit tests free of Redis.
type EventBus struct {
	rdb *redis.Client
}

func NewEventBus(rdb *redis.Client) *EventBus {
	return &EventBus{rdb: rdb}
}

// Publish sends an event on the given channel. Failures are logged, never
// propagated: a broken bus must not fail the write that triggered it.
func (b *EventBus) Publish(ctx context.Context, channel, action string, entityID *uuid.UUID) {
	if b == nil || b.rdb == nil {
		return
	}
	payload, err := json.Marshal(Event{Action: action, EntityID: entityID, At: time.Now()})
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("event bus: marshal")
		return
	}
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("event bus: publish")
	}
}
