package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

var _ domain.CompletionNotifier = (*RedisNotifier)(nil)

// RedisNotifier publishes settlement events on a pub/sub channel so
// downstream consumers (push notifications, achievements) can react
// without the engine knowing about them.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) DebtSettled(ctx context.Context, event domain.SettlementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling settlement event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing settlement event: %w", err)
	}
	return nil
}
