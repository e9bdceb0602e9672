// internal/infrastructure/browser/sentiment_page.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"crypto-market-pulse-bot/pkg/logger"
)

// SentimentCapture — сырые данные со страницы индекса
type SentimentCapture struct {
	ScoreText    string
	ObservedDate string
	ImagePath    string // пусто, если график не найден
}

// CaptureSentiment читает индекс и дату и снимает график
func (b *Browser) CaptureSentiment(ctx context.Context, now time.Time) (SentimentCapture, error) {
	tabCtx, cancel := b.newTab(ctx, 1280, 900)
	defer cancel()

	var capture SentimentCapture
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(b.sentimentURL),
		chromedp.WaitVisible(sentimentScoreSelector, chromedp.ByQuery),
		chromedp.Text(sentimentScoreSelector, &capture.ScoreText, chromedp.ByQuery),
		chromedp.Text(sentimentDateSelector, &capture.ObservedDate, chromedp.ByQuery),
	)
	if err != nil {
		return SentimentCapture{}, fmt.Errorf("sentiment page: %w", err)
	}
	capture.ScoreText = strings.TrimSpace(capture.ScoreText)
	capture.ObservedDate = strings.TrimSpace(capture.ObservedDate)

	path, ok, err := b.screenshotElement(tabCtx, sentimentCanvasSelector, sentimentFileName(now))
	switch {
	case err != nil:
		logger.Warn("⚠️ [FGI] Скриншот графика не удался: %v", err)
	case !ok:
		logger.Warn("⚠️ [FGI] Canvas графика не найден")
	default:
		capture.ImagePath = path
		logger.Info("📸 [FGI] График → %s", path)
	}

	return capture, nil
}
