// internal/infrastructure/persistence/redis_storage/score_storage.go
package redis_storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	redis_service "crypto-market-pulse-bot/internal/infrastructure/cache/redis"
	"crypto-market-pulse-bot/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const scoreKey = "pulse:fgi:last"

// ScoreStorage — последний индекс страха и жадности в Redis (без TTL)
type ScoreStorage struct {
	client *redis.Client
}

// NewScoreStorage создаёт хранилище
func NewScoreStorage(redisService *redis_service.RedisService) (*ScoreStorage, error) {
	if redisService == nil || redisService.GetClient() == nil {
		return nil, ErrRedisNotReady
	}
	return &ScoreStorage{client: redisService.GetClient()}, nil
}

// Load читает индекс; ok=false если ключа нет
func (s *ScoreStorage) Load(ctx context.Context) (int, bool, error) {
	raw, err := s.client.Get(ctx, scoreKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("score_storage: ошибка чтения: %w", err)
	}

	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("score_storage: %q: %w", raw, ErrCorruptValue)
	}
	return score, true, nil
}

// Save записывает индекс
func (s *ScoreStorage) Save(ctx context.Context, score int) error {
	if err := s.client.Set(ctx, scoreKey, strconv.Itoa(score), 0).Err(); err != nil {
		return fmt.Errorf("score_storage: ошибка сохранения: %w", err)
	}
	logger.Debug("💾 score_storage: индекс %d сохранён", score)
	return nil
}
