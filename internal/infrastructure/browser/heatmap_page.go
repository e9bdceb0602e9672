// internal/infrastructure/browser/heatmap_page.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"crypto-market-pulse-bot/pkg/logger"
)

// HeatmapTarget — вкладка инструмента на странице тепловой карты
type HeatmapTarget struct {
	Name string // BTCUSDT
	Tab  string // Binance BTCUSDT
}

// HeatmapCapture — скриншоты по инструментам и перехваченный токен API
type HeatmapCapture struct {
	Images map[string]string
	Token  string
}

const selectDayRangeJS = `(() => {
  const want = '24小時';
  const direct = [...document.querySelectorAll('button')].find(x => x.textContent.trim() === want);
  if (direct) { direct.click(); return true; }
  const opener = [...document.querySelectorAll('button')].find(x => /分鐘|小時|天/.test(x.textContent));
  if (opener) opener.click();
  return false;
})()`

const pickDayRangeJS = `(() => {
  const li = [...document.querySelectorAll('ul[role="listbox"] li')].find(x => x.textContent.trim() === '24小時');
  if (li) { li.click(); return true; }
  return false;
})()`

func selectTabJS(tab string) string {
	return fmt.Sprintf(`((tab) => {
  const buttons = [...document.querySelectorAll('button')];
  let b = buttons.find(x => x.textContent.trim() === tab);
  if (!b) {
    const key = tab.split(' ')[1] || tab;
    b = buttons.find(x => x.textContent.includes(key));
  }
  if (!b) return false;
  b.click();
  return true;
})(%q)`, tab)
}

// tokenRecorder запоминает последний токен из запросов страницы
type tokenRecorder struct {
	mu    sync.Mutex
	token string
}

func (r *tokenRecorder) observe(rawURL string) {
	if token, ok := tokenFromRequestURL(rawURL); ok {
		r.mu.Lock()
		r.token = token
		r.mu.Unlock()
	}
}

func (r *tokenRecorder) value() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// CaptureHeatmaps переключает окно на 24 часа и снимает canvas каждой вкладки.
// Отсутствующая вкладка или canvas пропускается с предупреждением.
func (b *Browser) CaptureHeatmaps(ctx context.Context, targets []HeatmapTarget, stamp time.Time) (HeatmapCapture, error) {
	tabCtx, cancel := b.newTab(ctx, 1600, 1200)
	defer cancel()

	recorder := &tokenRecorder{}
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventRequestWillBeSent); ok && e.Request != nil {
			recorder.observe(e.Request.URL)
		}
	})

	var direct bool
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(b.heatmapURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(6*time.Second),
		chromedp.Evaluate(selectDayRangeJS, &direct),
	)
	if err != nil {
		return HeatmapCapture{}, fmt.Errorf("heatmap page: %w", err)
	}

	if !direct {
		var picked bool
		if err := chromedp.Run(tabCtx,
			chromedp.Sleep(800*time.Millisecond),
			chromedp.Evaluate(pickDayRangeJS, &picked),
		); err != nil || !picked {
			logger.Warn("⚠️ [Heatmap] Не удалось выбрать окно 24小時 (err=%v)", err)
		}
	}
	if err := chromedp.Run(tabCtx, chromedp.Sleep(2*time.Second)); err != nil {
		return HeatmapCapture{}, err
	}

	capture := HeatmapCapture{Images: make(map[string]string, len(targets))}
	for _, target := range targets {
		var clicked bool
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(selectTabJS(target.Tab), &clicked)); err != nil {
			logger.Warn("⚠️ [Heatmap] %s: ошибка выбора вкладки: %v", target.Name, err)
			continue
		}
		if !clicked {
			logger.Warn("⚠️ [Heatmap] Вкладка %s не найдена", target.Tab)
			continue
		}
		if err := chromedp.Run(tabCtx, chromedp.Sleep(2*time.Second)); err != nil {
			return capture, err
		}

		path, ok, err := b.screenshotElement(tabCtx, heatmapCanvasSelector(target.Tab), heatmapFileName(target.Name, stamp))
		if err != nil {
			logger.Warn("⚠️ [Heatmap] %s: %v", target.Name, err)
			continue
		}
		if !ok {
			logger.Warn("⚠️ [Heatmap] %s canvas отсутствует", target.Name)
			continue
		}
		capture.Images[target.Name] = path
		logger.Info("📸 [Heatmap] %s → %s", target.Name, path)
	}

	capture.Token = recorder.value()
	if capture.Token != "" {
		logger.Debug("🔑 [Heatmap] Перехвачен токен API")
	}
	return capture, nil
}
