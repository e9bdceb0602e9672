// internal/infrastructure/browser/browser.go
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"crypto-market-pulse-bot/internal/infrastructure/config"
)

// Browser запускает headless Chrome на каждый сбор и закрывает его после
type Browser struct {
	execPath      string
	timeout       time.Duration
	screenshotDir string
	sentimentURL  string
	heatmapURL    string
}

// New создает браузер по конфигурации
func New(cfg config.BrowserConfig) *Browser {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Browser{
		execPath:      cfg.ExecPath,
		timeout:       timeout,
		screenshotDir: cfg.ScreenshotDir,
		sentimentURL:  cfg.SentimentURL,
		heatmapURL:    cfg.HeatmapPageURL,
	}
}

// newTab открывает новый экземпляр Chrome с заданным окном
func (b *Browser) newTab(parent context.Context, width, height int) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(width, height),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(ctx, b.timeout)

	cancel := func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
	}
	return ctx, cancel
}

// screenshotElement снимает первый элемент по селектору; ok=false если элемента нет
func (b *Browser) screenshotElement(ctx context.Context, selector, fileName string) (string, bool, error) {
	var count int
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll(%q).length`, selector), &count),
	); err != nil {
		return "", false, fmt.Errorf("query %s: %w", selector, err)
	}
	if count == 0 {
		return "", false, nil
	}

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.Screenshot(selector, &buf, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return "", false, fmt.Errorf("screenshot %s: %w", selector, err)
	}

	if err := os.MkdirAll(b.screenshotDir, 0o755); err != nil {
		return "", false, fmt.Errorf("create screenshot dir: %w", err)
	}
	path := screenshotPath(b.screenshotDir, fileName)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", false, fmt.Errorf("write screenshot: %w", err)
	}
	return path, true, nil
}
