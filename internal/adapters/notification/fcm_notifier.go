// internal/adapters/notification/fcm_notifier.go
package notification

import (
	"context"
	"fmt"
	"unicode/utf8"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"crypto-market-pulse-bot/pkg/logger"
)

// Длина тела push-уведомления
const maxPushBodyRunes = 240

// pushClient — часть messaging.Client, нужная нотификатору
type pushClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier рассылает алерты push-уведомлением в топик Firebase
type FCMNotifier struct {
	client pushClient
	topic  string
}

// NewFCMNotifier инициализирует Firebase по файлу сервисного аккаунта
func NewFCMNotifier(ctx context.Context, credentialsPath, topic string) (*FCMNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	logger.Info("✅ Firebase Messaging инициализирован (топик %s)", topic)
	return newFCMNotifier(client, topic), nil
}

func newFCMNotifier(client pushClient, topic string) *FCMNotifier {
	return &FCMNotifier{client: client, topic: topic}
}

// Name возвращает имя канала
func (fn *FCMNotifier) Name() string { return "fcm" }

// IsEnabled возвращает статус
func (fn *FCMNotifier) IsEnabled() bool { return fn.client != nil }

// Send публикует алерт в топик
func (fn *FCMNotifier) Send(ctx context.Context, alert Alert) error {
	message := &messaging.Message{
		Topic: fn.topic,
		Notification: &messaging.Notification{
			Title: alert.Title,
			Body:  truncateRunes(alert.Caption, maxPushBodyRunes),
		},
		Data: map[string]string{
			"kind": alert.Kind,
		},
	}

	id, err := fn.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	logger.Debug("📲 FCM сообщение отправлено: %s", id)
	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
