// internal/infrastructure/persistence/postgres/database/database_service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres"
	"crypto-market-pulse-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseService сервис для работы с базой данных
type DatabaseService struct {
	config *config.Config
	db     *sqlx.DB
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

// NewDatabaseService создает новый сервис базы данных
func NewDatabaseService(cfg *config.Config) *DatabaseService {
	return &DatabaseService{
		config: cfg,
		state:  StateStopped,
	}
}

// Start подключается к PostgreSQL и применяет миграции
func (ds *DatabaseService) Start(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state == StateRunning {
		return fmt.Errorf("database service already running")
	}

	logger.Info("🔄 Starting database service...")
	ds.state = StateStarting

	dbConfig := ds.config.Database
	logger.Info("📡 Connecting to PostgreSQL: %s:%d/%s", dbConfig.Host, dbConfig.Port, dbConfig.Name)

	db, err := sqlx.Open("postgres", ds.config.GetPostgresDSN())
	if err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if dbConfig.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.MaxIdleConns > 0 {
		db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	db.SetConnMaxLifetime(dbConfig.MaxConnLifetime)
	db.SetConnMaxIdleTime(dbConfig.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if dbConfig.EnableAutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			ds.state = StateError
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	ds.db = db
	ds.state = StateRunning

	logger.Info("✅ Successfully connected to PostgreSQL")
	logger.Info("   • Database: %s", dbConfig.Name)
	logger.Info("   • User: %s", dbConfig.User)
	return nil
}

// Stop закрывает пул соединений
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state != StateRunning {
		return fmt.Errorf("database service is not running")
	}

	logger.Info("🛑 Stopping database service...")
	ds.state = StateStopping

	if ds.db != nil {
		if err := ds.db.Close(); err != nil {
			ds.state = StateError
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	ds.db = nil
	ds.state = StateStopped
	logger.Info("✅ Database service stopped")
	return nil
}

// GetDB возвращает соединение с базой данных
func (ds *DatabaseService) GetDB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// State возвращает состояние сервиса
func (ds *DatabaseService) State() ServiceState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state
}

// HealthCheck проверяет здоровье базы данных
func (ds *DatabaseService) HealthCheck(ctx context.Context) error {
	db := ds.GetDB()
	if db == nil {
		return fmt.Errorf("database service is not running")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("⚠️ Database health check failed: %v", err)
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// GetStats возвращает статистику пула
func (ds *DatabaseService) GetStats() map[string]interface{} {
	db := ds.GetDB()
	stats := map[string]interface{}{
		"state":     ds.State(),
		"connected": db != nil,
	}

	if db != nil {
		dbStats := db.Stats()
		stats["open_connections"] = dbStats.OpenConnections
		stats["in_use"] = dbStats.InUse
		stats["idle"] = dbStats.Idle
		stats["wait_count"] = dbStats.WaitCount
	}
	return stats
}
