// application/pipeline/heatmap_pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"crypto-market-pulse-bot/internal/adapters/notification"
	"crypto-market-pulse-bot/internal/core/domain/analysis/bias"
	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"
	"crypto-market-pulse-bot/internal/delivery/telegram/app/bot/formatters"
	"crypto-market-pulse-bot/internal/infrastructure/browser"
	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/internal/infrastructure/metrics"
	"crypto-market-pulse-bot/pkg/logger"
	"crypto-market-pulse-bot/pkg/utils"
)

// HeatmapPipeline — тепловая карта ликвидности: уровни → торговая идея → алерт на инструмент
type HeatmapPipeline struct {
	instruments []config.Instrument
	source      HeatmapSource
	screenshots HeatmapScreenshotter
	prices      PriceSource
	formatter   *formatters.AlertFormatter
	dispatcher  Dispatcher
	levels      LevelsRecorder
	history     AlertRecorder
	metrics     *metrics.Metrics
	location    *time.Location
	dayHour     int
	topN        int
	now         func() time.Time

	running sync.Mutex
}

// HeatmapDeps зависимости пайплайна; Screenshots, Prices, Levels, History, Metrics необязательны
type HeatmapDeps struct {
	Instruments []config.Instrument
	Source      HeatmapSource
	Screenshots HeatmapScreenshotter
	Prices      PriceSource
	Formatter   *formatters.AlertFormatter
	Dispatcher  Dispatcher
	Levels      LevelsRecorder
	History     AlertRecorder
	Metrics     *metrics.Metrics
	Location    *time.Location
	DayHour     int // начало суточного окна запроса, по умолчанию 8
	TopN        int
	Now         func() time.Time
}

// NewHeatmapPipeline собирает пайплайн
func NewHeatmapPipeline(deps HeatmapDeps) *HeatmapPipeline {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	dayHour := deps.DayHour
	if dayHour <= 0 || dayHour > 23 {
		dayHour = 8
	}
	topN := deps.TopN
	if topN <= 0 {
		topN = liquidity_levels.DefaultTopN
	}

	return &HeatmapPipeline{
		instruments: deps.Instruments,
		source:      deps.Source,
		screenshots: deps.Screenshots,
		prices:      deps.Prices,
		formatter:   deps.Formatter,
		dispatcher:  deps.Dispatcher,
		levels:      deps.Levels,
		history:     deps.History,
		metrics:     deps.Metrics,
		location:    loc,
		dayHour:     dayHour,
		topN:        topN,
		now:         now,
	}
}

// Run выполняет один цикл по всем инструментам и возвращает обновлённое состояние.
// Инструмент без данных пропускается, цикл помечается как частичный.
func (p *HeatmapPipeline) Run(ctx context.Context, state HeatmapState) (HeatmapState, CycleResult, error) {
	if !p.running.TryLock() {
		logger.Warn("⏭ [Heatmap] Предыдущий цикл ещё выполняется, пропуск")
		p.metrics.CycleFinished(NameHeatmap, metrics.StatusSkipped)
		return state, CycleResult{Pipeline: NameHeatmap}, ErrCycleInProgress
	}
	defer p.running.Unlock()

	result := newCycle(NameHeatmap, p.now())
	logger.Info("🚀 [Heatmap] Цикл %s начат", result.ID)

	windowStart := utils.AtHour(result.Started, p.location, p.dayHour)
	images := map[string]string{}

	if p.screenshots != nil {
		capture, err := p.screenshots.CaptureHeatmaps(ctx, p.targets(), windowStart)
		if err != nil {
			logger.Warn("⚠️ [Heatmap] Скриншоты недоступны: %v", err)
		} else {
			images = capture.Images
			if capture.Token != "" && capture.Token != state.AuthToken {
				state = HeatmapState{AuthToken: capture.Token, UpdatedAt: result.Started}
				logger.Info("🔑 [Heatmap] Токен API обновлён")
			}
		}
	}

	processed := 0
	for _, inst := range p.instruments {
		delivered, err := p.processInstrument(ctx, inst, windowStart, state, images[inst.Name])
		if err != nil {
			result.Skipped = append(result.Skipped, inst.Name)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", inst.Name, err))
			logger.Warn("⚠️ [Heatmap] %s пропущен: %v", inst.Name, err)
			continue
		}
		processed++
		if delivered {
			result.Delivered++
		}
	}

	switch {
	case processed == 0 && len(p.instruments) > 0:
		result.Status = CycleFailed
	case len(result.Errors) > 0:
		result.Status = CyclePartial
	}
	result.Finished = p.now()

	p.metrics.CycleFinished(NameHeatmap, string(result.Status))
	logger.Info("🏁 [Heatmap] Цикл %s завершён: %s (%d/%d инструментов)",
		result.ID, result.Status, processed, len(p.instruments))
	return state, result, result.Err()
}

func (p *HeatmapPipeline) targets() []browser.HeatmapTarget {
	targets := make([]browser.HeatmapTarget, 0, len(p.instruments))
	for _, inst := range p.instruments {
		targets = append(targets, browser.HeatmapTarget{Name: inst.Name, Tab: inst.PageTab})
	}
	return targets
}

// processInstrument возвращает ошибку только если данных нет; при сбое доставки delivered=false
func (p *HeatmapPipeline) processInstrument(ctx context.Context, inst config.Instrument, windowStart time.Time, state HeatmapState, imagePath string) (bool, error) {
	book, err := p.source.FetchBook(ctx, inst.CoinglassSymbol, windowStart, state.AuthToken)
	if err != nil {
		return false, err
	}

	bids, rejectedBids := liquidity_levels.ParseTicks(book.Bids)
	asks, rejectedAsks := liquidity_levels.ParseTicks(book.Asks)
	p.reportRejected(inst.Name, liquidity_levels.SideBid, rejectedBids)
	p.reportRejected(inst.Name, liquidity_levels.SideAsk, rejectedAsks)

	snapshot := liquidity_levels.Snapshot{
		Instrument:      inst.Name,
		AsOf:            book.Timestamp,
		Bids:            bids,
		Asks:            asks,
		LastTradedPrice: p.lastPrice(ctx, inst),
	}
	support, resistance := liquidity_levels.AggregateSnapshot(snapshot, p.topN)

	tradeBias := bias.Synthesize(
		bias.Instrument{Name: inst.Name, Step: decimal.NewFromFloat(inst.Step)},
		snapshot.LastTradedPrice, support, resistance,
	)

	if p.levels != nil {
		if err := p.levels.SaveLevels(ctx, inst.Name, support, resistance); err != nil {
			logger.Warn("⚠️ [Heatmap] %s: уровни не сохранены: %v", inst.Name, err)
		}
	}

	caption := p.formatter.FormatHeatmap(formatters.HeatmapData{
		Instrument: inst.Name,
		Date:       book.Timestamp.In(p.location).Format("2006-01-02"),
		Support:    support,
		Resistance: resistance,
		Bias:       tradeBias,
	})

	alert := notification.Alert{
		Kind:      notification.KindHeatmap,
		Title:     fmt.Sprintf("%s 流動性熱圖", inst.Name),
		Caption:   caption,
		ImagePath: imagePath,
	}
	delivered := true
	if err := p.dispatcher.Dispatch(ctx, alert); err != nil {
		delivered = false
		logger.Error("❌ [Heatmap] %s: доставка не удалась: %v", inst.Name, err)
	} else {
		logger.Info("✅ [Heatmap] Отправлено %s (%s)", inst.Name, tradeBias.Direction)
	}

	recordHistory(ctx, p.history, alert, inst.Name, delivered)
	return delivered, nil
}

func (p *HeatmapPipeline) lastPrice(ctx context.Context, inst config.Instrument) *decimal.Decimal {
	if p.prices == nil {
		return nil
	}
	symbol := inst.PriceSymbol
	if symbol == "" {
		symbol = inst.Name
	}
	price, err := p.prices.LastPrice(ctx, symbol)
	if err != nil {
		logger.Warn("⚠️ [Heatmap] %s: цена недоступна: %v", inst.Name, err)
		return nil
	}
	return &price
}

func (p *HeatmapPipeline) reportRejected(instrument string, side liquidity_levels.Side, rejected []liquidity_levels.RejectedTick) {
	if len(rejected) == 0 {
		return
	}
	p.metrics.TicksRejected(instrument, string(side), len(rejected))
	logger.Debug("🧹 [Heatmap] %s/%s: отброшено %d записей (первая: #%d %s)",
		instrument, side, len(rejected), rejected[0].Index, rejected[0].Reason)
}
