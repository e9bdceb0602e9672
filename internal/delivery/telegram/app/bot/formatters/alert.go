// internal/delivery/telegram/app/bot/formatters/alert.go
package formatters

import (
	"strings"

	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"
)

// AlertFormatter собирает подписи к алертам. Без состояния: одинаковый вход → одинаковый текст.
type AlertFormatter struct {
	nf   *NumberFormatter
	topN int
}

// NewAlertFormatter создаёт форматтер; topN строк в блоке уровней
func NewAlertFormatter(topN int) *AlertFormatter {
	if topN <= 0 {
		topN = liquidity_levels.DefaultTopN
	}
	return &AlertFormatter{nf: NewNumberFormatter(), topN: topN}
}

// Compose склеивает непустые секции через пустую строку
func (f *AlertFormatter) Compose(sections ...string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n\n")
}
