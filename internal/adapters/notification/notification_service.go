// internal/adapters/notification/notification_service.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/metrics"
	"crypto-market-pulse-bot/pkg/logger"
)

// Виды алертов
const (
	KindSentiment = "sentiment"
	KindHeatmap   = "heatmap"
)

// Alert — готовое к доставке сообщение
type Alert struct {
	Kind      string
	Title     string
	Caption   string
	ImagePath string // пусто, если скриншота нет
}

// Notifier интерфейс отдельного канала доставки
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
	IsEnabled() bool
}

// CompositeNotificationService рассылает алерт во все включенные каналы
type CompositeNotificationService struct {
	notifiers []Notifier
	metrics   *metrics.Metrics
	mu        sync.RWMutex

	totalSent  int
	failed     int
	lastSentAt time.Time
}

// NewCompositeNotificationService создает композитный сервис
func NewCompositeNotificationService(m *metrics.Metrics) *CompositeNotificationService {
	return &CompositeNotificationService{
		notifiers: make([]Notifier, 0),
		metrics:   m,
	}
}

// AddNotifier добавляет нотификатор
func (c *CompositeNotificationService) AddNotifier(notifier Notifier) {
	if notifier == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifiers = append(c.notifiers, notifier)
}

// GetNotifiers возвращает копию списка нотификаторов
func (c *CompositeNotificationService) GetNotifiers() []Notifier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	notifiers := make([]Notifier, len(c.notifiers))
	copy(notifiers, c.notifiers)
	return notifiers
}

// Name возвращает имя сервиса
func (c *CompositeNotificationService) Name() string {
	return "composite_notification_service"
}

// Dispatch отправляет алерт через все включенные нотификаторы.
// Ошибка одного канала не мешает остальным; все ошибки объединяются.
func (c *CompositeNotificationService) Dispatch(ctx context.Context, alert Alert) error {
	notifiers := c.GetNotifiers()

	var errs []error
	sent := 0
	for _, notifier := range notifiers {
		if !notifier.IsEnabled() {
			continue
		}
		if err := notifier.Send(ctx, alert); err != nil {
			logger.Error("❌ Ошибка отправки %s через %s: %v", alert.Kind, notifier.Name(), err)
			c.metrics.DeliveryFinished(notifier.Name(), metrics.StatusFailed)
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
			continue
		}
		c.metrics.DeliveryFinished(notifier.Name(), metrics.StatusOK)
		sent++
	}

	c.mu.Lock()
	c.totalSent += sent
	c.failed += len(errs)
	c.lastSentAt = time.Now()
	c.mu.Unlock()

	if sent == 0 && len(errs) == 0 {
		logger.Warn("⚠️ Нет включенных каналов доставки для %s", alert.Kind)
	}

	return errors.Join(errs...)
}

// GetStats возвращает статистику доставки
func (c *CompositeNotificationService) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.notifiers))
	for _, n := range c.notifiers {
		names = append(names, n.Name())
	}

	return map[string]interface{}{
		"total_sent":     c.totalSent,
		"failed":         c.failed,
		"last_sent_time": c.lastSentAt,
		"notifiers":      names,
	}
}
