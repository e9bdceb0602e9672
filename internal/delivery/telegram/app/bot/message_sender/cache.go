// internal/delivery/telegram/app/bot/message_sender/cache.go
package message_sender

import (
	"sync"
	"time"
)

// duplicateWindow — одинаковые сообщения чаще этого интервала не отправляются
const duplicateWindow = 30 * time.Second

// MessageCache кэш сообщений для предотвращения дубликатов
type MessageCache struct {
	cache    map[string]time.Time
	mu       sync.RWMutex
	cacheTTL time.Duration
}

// NewMessageCache создает новый кэш сообщений
func NewMessageCache(ttl time.Duration) *MessageCache {
	return &MessageCache{
		cache:    make(map[string]time.Time),
		cacheTTL: ttl,
	}
}

// IsDuplicate проверяет, является ли сообщение дубликатом
func (mc *MessageCache) IsDuplicate(hash string) bool {
	mc.mu.RLock()
	lastSent, exists := mc.cache[hash]
	mc.mu.RUnlock()

	if !exists {
		return false
	}

	return time.Since(lastSent) < duplicateWindow
}

// Add добавляет сообщение в кэш, попутно удаляя устаревшие записи
func (mc *MessageCache) Add(hash string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	for key, timestamp := range mc.cache {
		if now.Sub(timestamp) > mc.cacheTTL {
			delete(mc.cache, key)
		}
	}

	mc.cache[hash] = now
}
