package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"chatline/internal/constants"
	"chatline/pkg/models"
)

// Broadcaster fans a message event out to connected clients. The chat UI
// subscribes to one channel per group.
type Broadcaster interface {
	Broadcast(ctx context.Context, eventType string, msg models.Message) error
}

const (
	EventMessageCreated  = "message.created"
	EventMessageUpdated  = "message.updated"
	EventMessageDeleted  = "message.deleted"
	EventMessageCensored = "message.censored"
)

type broadcastEvent struct {
	Type    string         `json:"type"`
	Message models.Message `json:"message"`
}

type RedisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, eventType string, msg models.Message) error {
	payload, err := json.Marshal(broadcastEvent{Type: eventType, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast event: %w", err)
	}

	channel := constants.BroadcastChannelPrefix + strconv.FormatInt(msg.GroupID, 10)
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish broadcast event: %w", err)
	}
	return nil
}

// NopBroadcaster is used when no Redis instance is configured.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(context.Context, string, models.Message) error { return nil }
