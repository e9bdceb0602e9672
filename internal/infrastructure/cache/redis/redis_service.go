// internal/infrastructure/cache/redis/redis_service.go
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisService сервис для работы с Redis
type RedisService struct {
	config *config.Config
	client *redis.Client
	mu     sync.RWMutex
	state  ServiceState
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewRedisService создает новый Redis сервис
func NewRedisService(cfg *config.Config) *RedisService {
	return &RedisService{
		config: cfg,
		state:  StateStopped,
	}
}

// Start подключается к Redis и проверяет соединение
func (rs *RedisService) Start(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state == StateRunning {
		return fmt.Errorf("Redis service already running")
	}

	logger.Info("🔄 Starting Redis service...")
	rs.state = StateStarting

	redisConfig := rs.config.Redis
	options := &redis.Options{
		Addr:     rs.config.GetRedisAddress(),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,

		PoolSize:     redisConfig.PoolSize,
		MinIdleConns: redisConfig.MinIdleConns,

		DialTimeout:  redisConfig.DialTimeout,
		ReadTimeout:  redisConfig.ReadTimeout,
		WriteTimeout: redisConfig.WriteTimeout,
		PoolTimeout:  redisConfig.PoolTimeout,

		MaxRetries:      redisConfig.MaxRetries,
		MinRetryBackoff: redisConfig.MinRetryBackoff,
		MaxRetryBackoff: redisConfig.MaxRetryBackoff,
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.Info("📡 Connecting to Redis: %s (DB: %d)", options.Addr, redisConfig.DB)

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		rs.state = StateError
		logger.Error("❌ Failed to connect to Redis: %v (address: %s)", err, options.Addr)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rs.client = client
	rs.state = StateRunning
	logger.Info("✅ Successfully connected to Redis")
	logger.Info("   • Address: %s", options.Addr)
	logger.Info("   • Pool size: %d", redisConfig.PoolSize)

	return nil
}

// Stop закрывает клиент
func (rs *RedisService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state != StateRunning {
		return fmt.Errorf("Redis service is not running")
	}

	logger.Info("🛑 Stopping Redis service...")
	rs.state = StateStopping

	if rs.client != nil {
		if err := rs.client.Close(); err != nil {
			rs.state = StateError
			logger.Error("❌ Failed to close Redis client: %v", err)
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	rs.client = nil
	rs.state = StateStopped
	logger.Info("✅ Redis service stopped")
	return nil
}

// GetClient возвращает клиент Redis
func (rs *RedisService) GetClient() *redis.Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.client
}

// State возвращает состояние сервиса
func (rs *RedisService) State() ServiceState {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.state
}

// HealthCheck проверяет здоровье Redis
func (rs *RedisService) HealthCheck(ctx context.Context) error {
	client := rs.GetClient()
	if client == nil {
		return fmt.Errorf("Redis service is not running")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		logger.Warn("⚠️ Redis health check failed: %v", err)
		return fmt.Errorf("Redis ping: %w", err)
	}
	return nil
}

// GetCache возвращает кэш с префиксом бота
func (rs *RedisService) GetCache() *Cache {
	client := rs.GetClient()
	if client == nil {
		return nil
	}
	return NewCacheWithClient(client)
}

// GetStats возвращает статистику пула
func (rs *RedisService) GetStats() map[string]interface{} {
	client := rs.GetClient()
	stats := map[string]interface{}{
		"state":     rs.State(),
		"connected": client != nil,
	}

	if client != nil {
		poolStats := client.PoolStats()
		stats["pool_hits"] = poolStats.Hits
		stats["pool_misses"] = poolStats.Misses
		stats["pool_timeouts"] = poolStats.Timeouts
		stats["pool_total_conns"] = poolStats.TotalConns
		stats["pool_idle_conns"] = poolStats.IdleConns
	}

	return stats
}

// Name возвращает имя сервиса
func (rs *RedisService) Name() string {
	return "RedisService"
}
