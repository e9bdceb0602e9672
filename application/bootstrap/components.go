// application/bootstrap/components.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-market-pulse-bot/application/pipeline"
	"crypto-market-pulse-bot/application/scheduler"
	"crypto-market-pulse-bot/internal/adapters/notification"
	"crypto-market-pulse-bot/internal/delivery/telegram/app/bot/formatters"
	"crypto-market-pulse-bot/internal/infrastructure/api/coinglass"
	"crypto-market-pulse-bot/internal/infrastructure/api/exchanges/binance"
	"crypto-market-pulse-bot/internal/infrastructure/browser"
	redis_service "crypto-market-pulse-bot/internal/infrastructure/cache/redis"
	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/internal/infrastructure/metrics"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/file_storage"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/database"
	alert_history_repo "crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/repository/alert_history"
	score_repo "crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/repository/score"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/redis_storage"
	"crypto-market-pulse-bot/pkg/logger"
)

// Имена задач планировщика
const (
	JobSentiment = "fear_greed_index"
	JobHeatmap   = "liquidity_heatmap"
)

// ключ состояния тепловой карты в кэше Redis
const heatmapStateKey = "heatmap:state"

// startInfrastructure поднимает Redis и PostgreSQL, если они включены
func (app *Application) startInfrastructure(ctx context.Context) error {
	if app.config.Redis.Enabled {
		app.redisService = redis_service.NewRedisService(app.config)
		if err := app.redisService.Start(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	if app.config.Database.Enabled {
		app.databaseService = database.NewDatabaseService(app.config)
		if err := app.databaseService.Start(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

// createScoreStore выбирает хранилище вчерашнего индекса
func (app *Application) createScoreStore() (pipeline.ScoreStore, error) {
	switch app.config.ScoreStore {
	case config.ScoreStoreRedis:
		if app.redisService == nil {
			return nil, errors.New("SCORE_STORE=redis, но Redis не запущен")
		}
		return redis_storage.NewScoreStorage(app.redisService)
	case config.ScoreStorePostgres:
		if app.databaseService == nil {
			return nil, errors.New("SCORE_STORE=postgres, но PostgreSQL не запущен")
		}
		return score_repo.NewScoreRepository(app.databaseService.GetDB()), nil
	default:
		return file_storage.NewScoreFileStore(app.config.ScoreStorePath), nil
	}
}

// buildPipelines собирает оба пайплайна и их зависимости
func (app *Application) buildPipelines(ctx context.Context) error {
	store, err := app.createScoreStore()
	if err != nil {
		return err
	}
	logger.Info("💾 Хранилище индекса: %s", app.config.ScoreStore)

	app.notifier = notification.CreateCompositeNotifier(ctx, app.config, app.metrics)
	formatter := formatters.NewAlertFormatter(app.config.TopLevels)

	sentimentDeps := pipeline.SentimentDeps{
		Store:      store,
		Formatter:  formatter,
		Dispatcher: app.notifier,
		Metrics:    app.metrics,
	}
	heatmapDeps := pipeline.HeatmapDeps{
		Instruments: app.config.Instruments,
		Source:      coinglass.NewClient(app.config.Coinglass),
		Formatter:   formatter,
		Dispatcher:  app.notifier,
		Metrics:     app.metrics,
		Location:    app.location,
		DayHour:     app.config.Schedule.HeatmapDayHour,
		TopN:        app.config.TopLevels,
	}

	if app.config.Browser.Enabled {
		b := browser.New(app.config.Browser)
		sentimentDeps.Collector = b
		heatmapDeps.Screenshots = b
	}

	if app.config.Binance.Enabled {
		heatmapDeps.Prices = binance.NewBinanceClient(app.config.Binance)
	} else {
		logger.Warn("⚠️ Binance отключен: торговая идея будет без текущей цены")
	}

	if app.redisService != nil {
		levels, err := redis_storage.NewLevelsStorage(app.redisService, app.config.Redis.LevelsTTL)
		if err != nil {
			return err
		}
		heatmapDeps.Levels = levels
		app.loadHeatmapState(ctx)
	}

	if app.databaseService != nil {
		history := alert_history_repo.NewAlertHistoryRepository(app.databaseService.GetDB())
		sentimentDeps.History = history
		heatmapDeps.History = history
	}

	if sentimentDeps.Collector != nil {
		app.sentiment = pipeline.NewSentimentPipeline(sentimentDeps)
	} else {
		logger.Warn("⚠️ Браузер отключен: индекс страха и жадности не собирается")
	}
	app.heatmap = pipeline.NewHeatmapPipeline(heatmapDeps)

	return nil
}

// buildScheduler регистрирует ежедневные задачи
func (app *Application) buildScheduler() error {
	sched := scheduler.New()
	timeout := app.config.Schedule.JobTimeout

	if app.sentiment != nil {
		hour, minute, err := config.ParseClock(app.config.Schedule.SentimentAt)
		if err != nil {
			return fmt.Errorf("SENTIMENT_AT: %w", err)
		}
		sched.Register(&scheduler.Job{
			Name:        JobSentiment,
			Description: "Индекс страха и жадности",
			Schedule:    scheduler.DailyAt(hour, minute, app.location),
			Handler:     app.runSentiment,
			Timeout:     timeout,
		})
	}

	hour, minute, err := config.ParseClock(app.config.Schedule.HeatmapAt)
	if err != nil {
		return fmt.Errorf("HEATMAP_AT: %w", err)
	}
	sched.Register(&scheduler.Job{
		Name:        JobHeatmap,
		Description: "Тепловая карта ликвидности",
		Schedule:    scheduler.DailyAt(hour, minute, app.location),
		Handler:     app.runHeatmap,
		Timeout:     timeout,
	})

	app.scheduler = sched
	return nil
}

func (app *Application) runSentiment(ctx context.Context) error {
	_, err := app.sentiment.Run(ctx)
	return err
}

// runHeatmap передаёт состояние токена между запусками
func (app *Application) runHeatmap(ctx context.Context) error {
	app.stateMu.Lock()
	state := app.heatmapState
	app.stateMu.Unlock()

	next, _, err := app.heatmap.Run(ctx, state)
	if errors.Is(err, pipeline.ErrCycleInProgress) {
		return err
	}

	if next != state {
		app.stateMu.Lock()
		app.heatmapState = next
		app.stateMu.Unlock()
		app.saveHeatmapState(ctx, next)
	}
	return err
}

func (app *Application) loadHeatmapState(ctx context.Context) {
	var state pipeline.HeatmapState
	err := app.redisService.GetCache().Get(ctx, heatmapStateKey, &state)
	switch {
	case errors.Is(err, redis_service.ErrCacheMiss):
		return
	case err != nil:
		logger.Warn("⚠️ Не удалось прочитать токен тепловой карты: %v", err)
		return
	}
	app.stateMu.Lock()
	app.heatmapState = state
	app.stateMu.Unlock()
	logger.Info("🔑 Токен тепловой карты восстановлен (от %s)", state.UpdatedAt.Format(time.RFC3339))
}

func (app *Application) saveHeatmapState(ctx context.Context, state pipeline.HeatmapState) {
	if app.redisService == nil {
		return
	}
	if err := app.redisService.GetCache().Set(ctx, heatmapStateKey, state, 0); err != nil {
		logger.Warn("⚠️ Не удалось сохранить токен тепловой карты: %v", err)
	}
}

// healthCheck — для /health: доступность включённых хранилищ
func (app *Application) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var errs []error
	if app.redisService != nil {
		if err := app.redisService.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if app.databaseService != nil {
		if err := app.databaseService.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	return errors.Join(errs...)
}

// metricsServerFor создаёт HTTP сервер метрик, если он включён
func metricsServerFor(cfg *config.Config, m *metrics.Metrics, health metrics.HealthFunc) *metrics.Server {
	if !cfg.HTTPEnabled {
		return nil
	}
	return metrics.NewServer(cfg.HTTPPort, m, health)
}
