// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"crypto-market-pulse-bot/application/pipeline"
	"crypto-market-pulse-bot/application/scheduler"
	"crypto-market-pulse-bot/internal/adapters/notification"
	redis_service "crypto-market-pulse-bot/internal/infrastructure/cache/redis"
	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/internal/infrastructure/metrics"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/database"
	"crypto-market-pulse-bot/pkg/logger"
)

// Application — бот: инфраструктура, пайплайны и планировщик
type Application struct {
	config   *config.Config
	location *time.Location

	mu          sync.RWMutex
	running     bool
	initialized bool
	startTime   time.Time
	stopChan    chan os.Signal
	runOnStart  bool

	metrics         *metrics.Metrics
	metricsServer   *metrics.Server
	redisService    *redis_service.RedisService
	databaseService *database.DatabaseService
	notifier        *notification.CompositeNotificationService

	sentiment *pipeline.SentimentPipeline
	heatmap   *pipeline.HeatmapPipeline
	scheduler *scheduler.Scheduler

	stateMu      sync.Mutex
	heatmapState pipeline.HeatmapState
}

// NewApplication создает приложение по конфигурации
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("конфигурация не задана")
	}
	return &Application{
		config:     cfg,
		location:   cfg.Location(),
		stopChan:   make(chan os.Signal, 1),
		runOnStart: cfg.Schedule.RunOnStart,
		metrics:    metrics.New(),
	}, nil
}

// Initialize поднимает инфраструктуру и собирает пайплайны
func (app *Application) Initialize() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.initialized {
		return nil
	}

	logger.Info("🔧 Инициализация приложения...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.startInfrastructure(ctx); err != nil {
		app.stopInfrastructure()
		return fmt.Errorf("инфраструктура: %w", err)
	}
	if err := app.buildPipelines(ctx); err != nil {
		app.stopInfrastructure()
		return fmt.Errorf("пайплайны: %w", err)
	}
	if err := app.buildScheduler(); err != nil {
		app.stopInfrastructure()
		return fmt.Errorf("планировщик: %w", err)
	}
	app.metricsServer = metricsServerFor(app.config, app.metrics, app.healthCheck)

	app.initialized = true
	logger.Info("✅ Приложение инициализировано")
	return nil
}

// Run запускает приложение и блокируется до Stop
func (app *Application) Run() error {
	if err := app.Initialize(); err != nil {
		return fmt.Errorf("инициализация приложения: %w", err)
	}

	app.mu.Lock()
	if app.running {
		app.mu.Unlock()
		return errors.New("приложение уже запущено")
	}
	app.running = true
	app.startTime = time.Now()
	app.mu.Unlock()

	logger.Info("🚀 Запуск приложения...")

	if app.metricsServer != nil {
		app.metricsServer.Start()
	}
	app.scheduler.Start()

	if app.runOnStart {
		logger.Info("⚡ Первый запуск задач при старте")
		for _, job := range app.scheduler.Jobs() {
			app.scheduler.RunNow(job.Name)
		}
	}

	logger.Info("✅ Приложение запущено и работает")
	logger.Info("⏳ Ожидание graceful shutdown...")

	<-app.waitForShutdown()
	return nil
}

// waitForShutdown ждет сигналов завершения
func (app *Application) waitForShutdown() <-chan struct{} {
	done := make(chan struct{})

	go func() {
		<-app.stopChan
		logger.Info("🛑 Получен сигнал завершения...")
		app.shutdownWithTimeout(30 * time.Second)
		close(done)
	}()

	return done
}

// shutdownWithTimeout выполняет graceful shutdown с таймаутом
func (app *Application) shutdownWithTimeout(timeout time.Duration) {
	logger.Info("⏳ Начинаем graceful shutdown (таймаут: %v)...", timeout)

	shutdownDone := make(chan struct{})
	go func() {
		app.shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("✅ Graceful shutdown завершен успешно")
	case <-time.After(timeout):
		logger.Warn("⚠️  Таймаут graceful shutdown, принудительное завершение")
	}
}

// shutdown выполняет остановку приложения
func (app *Application) shutdown() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.running {
		return
	}

	logger.Info("🛑 Останавливаем приложение...")

	// 1. Планировщик: дожидаемся текущих циклов
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	// 2. HTTP сервер метрик
	if app.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.metricsServer.Stop(ctx); err != nil {
			logger.Warn("⚠️  Ошибка остановки сервера метрик: %v", err)
		}
		cancel()
	}

	// 3. Хранилища
	app.stopInfrastructure()

	app.running = false
	logger.Info("✅ Приложение остановлено. Время работы: %v", time.Since(app.startTime).Round(time.Second))
}

func (app *Application) stopInfrastructure() {
	if app.databaseService != nil {
		if err := app.databaseService.Stop(); err != nil {
			logger.Warn("⚠️  Ошибка остановки PostgreSQL: %v", err)
		}
	}
	if app.redisService != nil {
		if err := app.redisService.Stop(); err != nil {
			logger.Warn("⚠️  Ошибка остановки Redis: %v", err)
		}
	}
}

// Stop посылает сигнал завершения
func (app *Application) Stop() error {
	select {
	case app.stopChan <- syscall.SIGTERM:
	default:
		// сигнал уже отправлен
	}
	return nil
}

// IsRunning сообщает, запущено ли приложение
func (app *Application) IsRunning() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.running
}

// Status возвращает статус приложения
func (app *Application) Status() map[string]interface{} {
	app.mu.RLock()
	defer app.mu.RUnlock()

	status := map[string]interface{}{
		"running":   app.running,
		"uptime":    time.Since(app.startTime).String(),
		"startTime": app.startTime.Format(time.RFC3339),
		"config": map[string]interface{}{
			"telegram_enabled": app.config.Telegram.Enabled,
			"score_store":      app.config.ScoreStore,
			"timezone":         app.config.Schedule.Timezone,
			"log_level":        app.config.LogLevel,
		},
	}

	if app.scheduler != nil {
		status["jobs"] = app.scheduler.Jobs()
	}
	if app.notifier != nil {
		status["notifications"] = app.notifier.GetStats()
	}
	if app.redisService != nil {
		status["redis"] = app.redisService.GetStats()
	}
	if app.databaseService != nil {
		status["database"] = app.databaseService.GetStats()
	}

	return status
}
