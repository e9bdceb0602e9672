// internal/delivery/telegram/app/bot/formatters/sentiment.go
package formatters

import (
	"fmt"
	"strings"

	"crypto-market-pulse-bot/internal/core/domain/sentiment"
	"crypto-market-pulse-bot/pkg/utils"
)

// SentimentData — данные для блока индекса страха и жадности
type SentimentData struct {
	ObservedDate   string
	Classification sentiment.Classification
	Trend          sentiment.Trend
}

// FormatSentiment форматирует блок индекса
func (f *AlertFormatter) FormatSentiment(data SentimentData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 SoSoValue 恐懼與貪婪指數（%s）\n", data.ObservedDate))
	sb.WriteString(fmt.Sprintf("今日分數：%d　%s %s\n",
		data.Classification.Score,
		data.Trend.Direction.Glyph(),
		utils.FormatSigned(data.Trend.Delta),
	))
	sb.WriteString(fmt.Sprintf("情緒等級：%s\n", data.Classification.Label))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("📌 建議：%s", data.Classification.Advice))

	return sb.String()
}
