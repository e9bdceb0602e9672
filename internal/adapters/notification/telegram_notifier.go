// internal/adapters/notification/telegram_notifier.go
package notification

import (
	"context"
	"os"

	"crypto-market-pulse-bot/internal/delivery/telegram/app/bot/message_sender"
	"crypto-market-pulse-bot/pkg/logger"
)

// TelegramNotifier доставляет алерты в чат Telegram
type TelegramNotifier struct {
	sender message_sender.MessageSender
}

// NewTelegramNotifier создает нотификатор поверх MessageSender
func NewTelegramNotifier(sender message_sender.MessageSender) *TelegramNotifier {
	return &TelegramNotifier{sender: sender}
}

// Name возвращает имя канала
func (tn *TelegramNotifier) Name() string { return "telegram" }

// IsEnabled возвращает статус
func (tn *TelegramNotifier) IsEnabled() bool {
	return tn.sender != nil && tn.sender.IsEnabled()
}

// Send отправляет скриншот с подписью, либо только текст если скриншота нет
func (tn *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	if alert.ImagePath != "" {
		if _, err := os.Stat(alert.ImagePath); err == nil {
			return tn.sender.SendPhoto(ctx, alert.ImagePath, alert.Caption)
		}
		logger.Warn("⚠️ TelegramNotifier: скриншот %s не найден, отправляю текст", alert.ImagePath)
	}
	return tn.sender.SendTextMessage(ctx, alert.Caption)
}
