package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher sends events over Redis Pub/Sub so that every API instance
// (and any cache layer) can react, not just the one that ran the job.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPublisher(rdb *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

// Channel returns the Pub/Sub channel used for a championship.
func (p *RedisPublisher) Channel(championshipID int) string {
	return p.prefix + "events:" + Room(championshipID)
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event %s: %w", event.Type, err)
	}
	channel := p.Channel(event.ChampionshipID)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

var _ Publisher = (*RedisPublisher)(nil)
