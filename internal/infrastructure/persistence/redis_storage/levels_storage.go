// internal/infrastructure/persistence/redis_storage/levels_storage.go
package redis_storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"
	redis_service "crypto-market-pulse-bot/internal/infrastructure/cache/redis"
	"crypto-market-pulse-bot/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	levelsKeyPrefix  = "pulse:levels:"
	defaultLevelsTTL = 72 * time.Hour
)

// LevelsStorage — последние ранжированные уровни тепловой карты.
// Ключ: pulse:levels:{instrument}:{side}
// Структура: ZSET, score = цена, value = JSON уровня.
type LevelsStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLevelsStorage создаёт новое хранилище
func NewLevelsStorage(redisService *redis_service.RedisService, ttl time.Duration) (*LevelsStorage, error) {
	if redisService == nil || redisService.GetClient() == nil {
		return nil, ErrRedisNotReady
	}
	if ttl <= 0 {
		ttl = defaultLevelsTTL
	}
	return &LevelsStorage{client: redisService.GetClient(), ttl: ttl}, nil
}

func levelsKey(instrument string, side liquidity_levels.Side) string {
	return levelsKeyPrefix + instrument + ":" + string(side)
}

// SaveLevels заменяет переданные стороны инструмента одной транзакцией
func (s *LevelsStorage) SaveLevels(ctx context.Context, instrument string, sides ...liquidity_levels.RankedLevels) error {
	pipe := s.client.TxPipeline()

	saved := 0
	for _, ranked := range sides {
		key := levelsKey(instrument, ranked.Side)
		pipe.Del(ctx, key)

		for _, level := range ranked.Levels {
			data, err := json.Marshal(level)
			if err != nil {
				logger.Warn("⚠️ levels_storage: ошибка сериализации уровня %s: %v", instrument, err)
				continue
			}
			pipe.ZAdd(ctx, key, &redis.Z{
				Score:  level.Price.InexactFloat64(),
				Member: string(data),
			})
			saved++
		}
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("levels_storage: ошибка сохранения уровней %s: %w", instrument, err)
	}

	logger.Debug("💾 levels_storage: сохранено %d уровней для %s (TTL: %v)", saved, instrument, s.ttl)
	return nil
}

// GetLevels возвращает уровни стороны по возрастанию цены
func (s *LevelsStorage) GetLevels(ctx context.Context, instrument string, side liquidity_levels.Side) ([]liquidity_levels.PriceLevel, error) {
	results, err := s.client.ZRangeByScore(ctx, levelsKey(instrument, side), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("levels_storage: ошибка чтения уровней %s/%s: %w", instrument, side, err)
	}

	levels := make([]liquidity_levels.PriceLevel, 0, len(results))
	for _, raw := range results {
		var level liquidity_levels.PriceLevel
		if err := json.Unmarshal([]byte(raw), &level); err != nil {
			logger.Warn("⚠️ levels_storage: ошибка десериализации уровня: %v", err)
			continue
		}
		levels = append(levels, level)
	}
	return levels, nil
}
