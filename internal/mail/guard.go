package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SendGuard отсеивает повторную отправку уже ушедшего письма.
//
// Ключ — taskId: он стабилен по всей цепочке попыток одной логической
// задачи, поэтому дубликат доставки (crash после отправки, но до ack)
// не приводит к дубликату письма. Гарантия best-effort: отказ guard'а
// не блокирует отправку.
type SendGuard interface {
	// AlreadySent возвращает true, если письмо с этим ключом уже уходило.
	AlreadySent(ctx context.Context, key string) (bool, error)

	// MarkSent помечает ключ как отправленный.
	MarkSent(ctx context.Context, key string) error
}

// guardTTL — сколько помним отправленные ключи. Дольше TTL очереди:
// после него дубликат доставки невозможен.
const guardTTL = 48 * time.Hour

// RedisGuard — SendGuard поверх Redis.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard создаёт guard на существующем клиенте Redis.
func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func guardKey(key string) string {
	return "bazaar:mail:sent:" + key
}

// AlreadySent проверяет ключ в Redis.
func (g *RedisGuard) AlreadySent(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, guardKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("guard exists: %w", err)
	}
	return n > 0, nil
}

// MarkSent помечает ключ с TTL.
func (g *RedisGuard) MarkSent(ctx context.Context, key string) error {
	if err := g.client.Set(ctx, guardKey(key), 1, guardTTL).Err(); err != nil {
		return fmt.Errorf("guard set: %w", err)
	}
	return nil
}

// NoopGuard — заглушка, когда Redis недоступен или не сконфигурирован.
// Дубликаты писем снова возможны (исходная семантика at-least-once).
type NoopGuard struct{}

// AlreadySent всегда false.
func (NoopGuard) AlreadySent(context.Context, string) (bool, error) { return false, nil }

// MarkSent ничего не делает.
func (NoopGuard) MarkSent(context.Context, string) error { return nil }
