// internal/delivery/telegram/app/bot/message_sender/sender.go
package message_sender

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/pkg/logger"
)

// Telegram ограничивает подпись к фото 1024 символами
const maxCaptionRunes = 1024

// MessageSender интерфейс для отправки сообщений
type MessageSender interface {
	SendTextMessage(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, imagePath, caption string) error

	GetChatID() string
	SetTestMode(enabled bool)
	IsTestMode() bool
	IsEnabled() bool
}

// MessageSenderImpl реализация MessageSender
type MessageSenderImpl struct {
	httpClient   *http.Client
	baseURL      string
	rateLimiter  *RateLimiter
	chatID       string
	testMode     bool
	enabled      bool
	messageCache *MessageCache
	maxRetries   int
}

// NewMessageSender создает новый MessageSender
func NewMessageSender(cfg *config.Config) *MessageSenderImpl {
	apiURL := strings.TrimRight(cfg.Telegram.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	return &MessageSenderImpl{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      fmt.Sprintf("%s/bot%s/", apiURL, cfg.Telegram.BotToken),
		rateLimiter:  NewRateLimiter(1 * time.Second),
		chatID:       NormalizeChatID(cfg.Telegram.ChatID),
		testMode:     cfg.MonitoringTestMode,
		enabled:      cfg.Telegram.Enabled,
		messageCache: NewMessageCache(10 * time.Minute),
		maxRetries:   3,
	}
}

// SendTextMessage отправляет текстовое сообщение без разметки
func (ms *MessageSenderImpl) SendTextMessage(ctx context.Context, text string) error {
	if ms.skip("text", text) {
		return nil
	}

	messageHash := GetMessageHash(ms.chatID, text, "")
	if ms.messageCache.IsDuplicate(messageHash) {
		logger.Warn("⚠️ Дубликат сообщения, пропуск")
		return nil
	}

	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	request := map[string]interface{}{
		"chat_id": ms.chatID,
		"text":    text,
	}

	err := ms.sendTelegramRequest(ctx, "sendMessage", jsonBody(request))
	if err != nil {
		logger.Error("❌ Ошибка отправки сообщения: %v", err)
		return err
	}

	ms.messageCache.Add(messageHash)
	return nil
}

// SendPhoto отправляет изображение с подписью (multipart/form-data).
// Подпись длиннее лимита обрезается по последней строке, остаток уходит отдельным сообщением.
func (ms *MessageSenderImpl) SendPhoto(ctx context.Context, imagePath, caption string) error {
	if ms.skip("photo "+imagePath, caption) {
		return nil
	}

	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("photo %s: %w", imagePath, err)
	}

	messageHash := GetMessageHash(ms.chatID, caption, imagePath)
	if ms.messageCache.IsDuplicate(messageHash) {
		logger.Warn("⚠️ Дубликат фото %s, пропуск", imagePath)
		return nil
	}

	photoCaption, overflow := splitCaption(caption)

	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	fields := map[string]string{"chat_id": ms.chatID}
	if photoCaption != "" {
		fields["caption"] = photoCaption
	}

	if err := ms.sendTelegramRequest(ctx, "sendPhoto", multipartBody(fields, "photo", imagePath)); err != nil {
		logger.Error("❌ Ошибка отправки фото: %v", err)
		return err
	}
	ms.messageCache.Add(messageHash)

	if overflow != "" {
		return ms.SendTextMessage(ctx, overflow)
	}
	return nil
}

// skip пишет сообщение в лог, если отправка отключена или тестовый режим
func (ms *MessageSenderImpl) skip(kind, text string) bool {
	if !ms.enabled {
		logger.Info("📝 Telegram не настроен, %s:\n%s", kind, text)
		return true
	}
	if ms.testMode {
		logger.Info("[TEST] Send %s to %s: %s", kind, ms.chatID, text)
		return true
	}
	return false
}

// GetChatID возвращает текущий chat ID
func (ms *MessageSenderImpl) GetChatID() string {
	return ms.chatID
}

// SetTestMode включает/выключает тестовый режим
func (ms *MessageSenderImpl) SetTestMode(enabled bool) {
	ms.testMode = enabled
}

// IsTestMode возвращает статус тестового режима
func (ms *MessageSenderImpl) IsTestMode() bool {
	return ms.testMode
}

// IsEnabled возвращает true, если токен и чат настроены
func (ms *MessageSenderImpl) IsEnabled() bool {
	return ms.enabled
}

// splitCaption режет подпись по лимиту Telegram: по последнему переводу строки
// в пределах лимита, а если его нет, то ровно по лимиту
func splitCaption(caption string) (photoCaption, overflow string) {
	runes := []rune(caption)
	if len(runes) <= maxCaptionRunes {
		return caption, ""
	}

	cut := maxCaptionRunes
	for i := maxCaptionRunes; i > 0; i-- {
		if runes[i] == '\n' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), "\n"), strings.TrimLeft(string(runes[cut:]), "\n")
}
