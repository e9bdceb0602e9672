// internal/delivery/telegram/app/bot/formatters/heatmap.go
package formatters

import (
	"fmt"
	"strings"

	"crypto-market-pulse-bot/internal/core/domain/analysis/bias"
	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"
)

// placeholderLine выводится вместо отсутствующего уровня
const placeholderLine = "—（無資料）"

// HeatmapData — данные для блока тепловой карты одного инструмента
type HeatmapData struct {
	Instrument string
	Date       string // YYYY-MM-DD
	Support    liquidity_levels.RankedLevels
	Resistance liquidity_levels.RankedLevels
	Bias       bias.TradeBias
}

// FormatHeatmap форматирует блок уровней и торговой идеи
func (f *AlertFormatter) FormatHeatmap(data HeatmapData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 %s（%s）\n", data.Instrument, data.Date))
	sb.WriteString("\n🔹 關鍵阻力區\n")
	f.writeLevels(&sb, data.Resistance.Levels, "阻力")
	sb.WriteString("\n🔹 關鍵支撐區\n")
	f.writeLevels(&sb, data.Support.Levels, "支撐")

	return f.Compose(sb.String(), f.formatBias(data.Bias))
}

// writeLevels пишет ровно topN строк, недостающие ранги заполняются заглушкой
func (f *AlertFormatter) writeLevels(sb *strings.Builder, levels []liquidity_levels.PriceLevel, kind string) {
	for i := 0; i < f.topN; i++ {
		if i < len(levels) {
			sb.WriteString(fmt.Sprintf("$%s – %s%s\n", f.nf.FormatPrice(levels[i].Price), rankLabel(i), kind))
		} else {
			sb.WriteString(placeholderLine + "\n")
		}
	}
}

func rankLabel(i int) string {
	switch i {
	case 0:
		return "首要"
	case 1:
		return "第二"
	default:
		return "技術熱區"
	}
}

// formatBias форматирует торговую идею
func (f *AlertFormatter) formatBias(b bias.TradeBias) string {
	var sb strings.Builder

	switch b.Direction {
	case bias.DirectionLong:
		sb.WriteString("🎯 策略：🟢 偏多\n")
	case bias.DirectionShort:
		sb.WriteString("🎯 策略：🔴 偏空\n")
	default:
		sb.WriteString("🎯 策略：⚪ 觀望\n")
		sb.WriteString(fmt.Sprintf("📌 %s", b.Note))
		return sb.String()
	}

	entries := make([]string, len(b.Ladder))
	for i, p := range b.Ladder {
		entries[i] = "$" + f.nf.FormatPrice(p)
	}
	sb.WriteString(fmt.Sprintf("現價：$%s\n", f.nf.FormatPrice(b.CurrentPrice)))
	sb.WriteString(fmt.Sprintf("分批進場：%s\n", strings.Join(entries, " / ")))
	sb.WriteString(fmt.Sprintf("停損：$%s\n", f.nf.FormatPrice(b.Stop)))
	sb.WriteString(fmt.Sprintf("目標：$%s\n", f.nf.FormatPrice(b.Target)))
	sb.WriteString(fmt.Sprintf("風險報酬：%s", f.nf.FormatRiskReward(b.RiskReward)))

	return sb.String()
}
