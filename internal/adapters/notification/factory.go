// internal/adapters/notification/factory.go
package notification

import (
	"context"

	"crypto-market-pulse-bot/internal/delivery/telegram/app/bot/message_sender"
	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/internal/infrastructure/metrics"
	"crypto-market-pulse-bot/pkg/logger"
)

// CreateCompositeNotifier собирает каналы доставки по конфигурации.
// Если ни Telegram, ни FCM не настроены, алерты печатаются в консоль.
func CreateCompositeNotifier(ctx context.Context, cfg *config.Config, m *metrics.Metrics) *CompositeNotificationService {
	service := NewCompositeNotificationService(m)

	if cfg.Telegram.Enabled {
		service.AddNotifier(NewTelegramNotifier(message_sender.NewMessageSender(cfg)))
		logger.Info("✅ Создан TelegramNotifier (чат %s)", cfg.Telegram.ChatID)
	}

	if cfg.FCM.Enabled {
		fcm, err := NewFCMNotifier(ctx, cfg.FCM.CredentialsPath, cfg.FCM.Topic)
		if err != nil {
			logger.Warn("⚠️ FCM недоступен: %v", err)
		} else {
			service.AddNotifier(fcm)
		}
	}

	if len(service.GetNotifiers()) == 0 {
		logger.Warn("⚠️ Каналы доставки не настроены, использую консольный нотификатор")
		service.AddNotifier(NewConsoleNotifier())
	}

	return service
}
