// application/bootstrap/builder.go
package bootstrap

import (
	"fmt"

	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/pkg/logger"
)

// AppBuilder строитель приложения
type AppBuilder struct {
	config  *config.Config
	options []AppOption
	err     error
}

// AppOption опция для настройки приложения
type AppOption func(*Application) error

// NewAppBuilder создает новый строитель приложений
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{}
}

// WithConfig устанавливает конфигурацию
func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithConfigFile загружает конфигурацию из файла
func (b *AppBuilder) WithConfigFile(path string) *AppBuilder {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		b.err = fmt.Errorf("загрузка конфигурации %s: %w", path, err)
		return b
	}
	b.config = cfg
	return b
}

// WithOption добавляет опцию настройки
func (b *AppBuilder) WithOption(option AppOption) *AppBuilder {
	b.options = append(b.options, option)
	return b
}

// WithTestMode включает тестовый режим (fluent метод)
func (b *AppBuilder) WithTestMode(enabled bool) *AppBuilder {
	return b.WithOption(WithTestMode(enabled))
}

// WithRunOnStart переопределяет запуск задач при старте (fluent метод)
func (b *AppBuilder) WithRunOnStart(enabled bool) *AppBuilder {
	return b.WithOption(WithRunOnStart(enabled))
}

// Build строит приложение
func (b *AppBuilder) Build() (*Application, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.config == nil {
		cfg, err := config.LoadConfig(".env")
		if err != nil {
			return nil, fmt.Errorf("конфигурация по умолчанию: %w", err)
		}
		b.config = cfg
		logger.Info("ℹ️  Используется конфигурация по умолчанию")
	}

	app, err := NewApplication(b.config)
	if err != nil {
		return nil, fmt.Errorf("создание приложения: %w", err)
	}

	for _, option := range b.options {
		if err := option(app); err != nil {
			return nil, fmt.Errorf("применение опции: %w", err)
		}
	}

	return app, nil
}

// ==================== Опции приложения ====================

// WithTestMode включает тестовый режим: Telegram пишет в лог вместо отправки
func WithTestMode(enabled bool) AppOption {
	return func(app *Application) error {
		if enabled {
			logger.Info("🧪 Тестовый режим включен")
			app.config.MonitoringTestMode = true
		}
		return nil
	}
}

// WithRunOnStart включает или отключает немедленный запуск задач
func WithRunOnStart(enabled bool) AppOption {
	return func(app *Application) error {
		app.runOnStart = enabled
		return nil
	}
}

// WithMetrics включает HTTP сервер метрик на порту
func WithMetrics(enabled bool, port int) AppOption {
	return func(app *Application) error {
		app.config.HTTPEnabled = enabled
		if enabled {
			if port <= 0 || port > 65535 {
				return fmt.Errorf("недопустимый порт метрик: %d", port)
			}
			app.config.HTTPPort = port
			logger.Info("📈 Сбор метрик включен (порт: %d)", port)
		}
		return nil
	}
}
