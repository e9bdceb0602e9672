// internal/infrastructure/browser/names.go
package browser

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"crypto-market-pulse-bot/pkg/utils"
)

// Селекторы страницы индекса страха и жадности
const (
	sentimentScoreSelector  = ".items-center.justify-center.rounded-sm .font-bold"
	sentimentDateSelector   = ".items-center.justify-center.rounded-sm .text-neutral-fg-4-rest"
	sentimentCanvasSelector = "canvas[data-zr-dom-id]"
)

// Фрагмент пути запросов тепловой карты, в которых передаётся токен
const heatmapAPIPath = "/liquidity-heatmap/"

func screenshotPath(dir, name string) string {
	return filepath.Join(dir, name)
}

// fgi-2024-06-01.png
func sentimentFileName(day time.Time) string {
	return "fgi-" + day.Format("2006-01-02") + ".png"
}

// btcusdt_20240601_0800.png
func heatmapFileName(instrument string, at time.Time) string {
	return strings.ToLower(utils.SanitizeFileName(instrument)) + "_" + at.Format("20060102_1504") + ".png"
}

// heatmapCanvasSelector — canvas графика вкладки «Binance BTCUSDT»
func heatmapCanvasSelector(tab string) string {
	return "#coinglass-kline-" + strings.ReplaceAll(tab, " ", "-") + " canvas"
}

// tokenFromRequestURL достаёт параметр data из запроса к API тепловой карты
func tokenFromRequestURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Path, heatmapAPIPath) {
		return "", false
	}
	token := u.Query().Get("data")
	return token, token != ""
}
