// application/pipeline/sentiment_pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-market-pulse-bot/internal/adapters/notification"
	"crypto-market-pulse-bot/internal/core/domain/sentiment"
	"crypto-market-pulse-bot/internal/delivery/telegram/app/bot/formatters"
	"crypto-market-pulse-bot/internal/infrastructure/metrics"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/models"
	"crypto-market-pulse-bot/pkg/logger"
)

// SentimentPipeline — индекс страха и жадности: сбор → классификация → тренд → алерт
type SentimentPipeline struct {
	collector  SentimentCollector
	store      ScoreStore
	formatter  *formatters.AlertFormatter
	dispatcher Dispatcher
	history    AlertRecorder
	metrics    *metrics.Metrics
	now        func() time.Time

	running sync.Mutex
}

// SentimentDeps зависимости пайплайна; History и Metrics необязательны
type SentimentDeps struct {
	Collector  SentimentCollector
	Store      ScoreStore
	Formatter  *formatters.AlertFormatter
	Dispatcher Dispatcher
	History    AlertRecorder
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// NewSentimentPipeline собирает пайплайн
func NewSentimentPipeline(deps SentimentDeps) *SentimentPipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SentimentPipeline{
		collector:  deps.Collector,
		store:      deps.Store,
		formatter:  deps.Formatter,
		dispatcher: deps.Dispatcher,
		history:    deps.History,
		metrics:    deps.Metrics,
		now:        now,
	}
}

// Run выполняет один цикл. Перекрывающийся запуск получает ErrCycleInProgress.
func (p *SentimentPipeline) Run(ctx context.Context) (CycleResult, error) {
	if !p.running.TryLock() {
		logger.Warn("⏭ [FGI] Предыдущий цикл ещё выполняется, пропуск")
		p.metrics.CycleFinished(NameSentiment, metrics.StatusSkipped)
		return CycleResult{Pipeline: NameSentiment}, ErrCycleInProgress
	}
	defer p.running.Unlock()

	result := newCycle(NameSentiment, p.now())
	logger.Info("🚀 [FGI] Цикл %s начат", result.ID)

	err := p.cycle(ctx, &result)
	if err != nil {
		result.Status = CycleFailed
		result.Errors = append(result.Errors, err)
		logger.Error("❌ [FGI] Цикл %s: %v", result.ID, err)
	}
	result.Finished = p.now()

	p.metrics.CycleFinished(NameSentiment, string(result.Status))
	logger.Info("🏁 [FGI] Цикл %s завершён: %s", result.ID, result.Status)
	return result, result.Err()
}

func (p *SentimentPipeline) cycle(ctx context.Context, result *CycleResult) error {
	capture, err := p.collector.CaptureSentiment(ctx, result.Started)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	raw, err := sentiment.ParseScore(capture.ScoreText)
	if err != nil {
		return err
	}
	if capture.ObservedDate == "" {
		return fmt.Errorf("%w: empty date", sentiment.ErrMissingInput)
	}

	classification := sentiment.Classify(raw)
	if classification.Clamped {
		logger.Warn("⚠️ [FGI] Индекс %d вне шкалы, приведён к %d", raw, classification.Score)
	}
	p.metrics.ObserveScore(classification.Score)

	var previous *int
	prev, ok, err := p.store.Load(ctx)
	switch {
	case err != nil:
		logger.Warn("⚠️ [FGI] Не удалось прочитать вчерашний индекс: %v", err)
	case ok:
		previous = &prev
	}

	reading := sentiment.Reading{
		Score:         classification.Score,
		ObservedDate:  capture.ObservedDate,
		PreviousScore: previous,
	}
	trend := sentiment.ComputeTrend(reading.Score, reading.PreviousScore)
	caption := p.formatter.FormatSentiment(formatters.SentimentData{
		ObservedDate:   reading.ObservedDate,
		Classification: classification,
		Trend:          trend,
	})

	if err := p.store.Save(ctx, reading.Score); err != nil {
		result.Status = CyclePartial
		result.Errors = append(result.Errors, fmt.Errorf("save score: %w", err))
		logger.Error("❌ [FGI] Не удалось сохранить индекс: %v", err)
	}

	alert := notification.Alert{
		Kind:      notification.KindSentiment,
		Title:     "恐懼與貪婪指數 " + classification.Label,
		Caption:   caption,
		ImagePath: capture.ImagePath,
	}
	delivered := true
	if err := p.dispatcher.Dispatch(ctx, alert); err != nil {
		delivered = false
		result.Status = CyclePartial
		result.Errors = append(result.Errors, fmt.Errorf("dispatch: %w", err))
	} else {
		result.Delivered++
	}

	recordHistory(ctx, p.history, alert, "", delivered)

	logger.Info("✅ [FGI] %d (%s) %s %+d", classification.Score, classification.Category,
		trend.Direction.Glyph(), trend.Delta)
	return nil
}

// recordHistory пишет журнал, если он подключен; ошибки только логируются
func recordHistory(ctx context.Context, history AlertRecorder, alert notification.Alert, instrument string, delivered bool) {
	if history == nil {
		return
	}
	record := &models.AlertRecord{
		Kind:       alert.Kind,
		Instrument: instrument,
		Caption:    alert.Caption,
		ImagePath:  alert.ImagePath,
		Delivered:  delivered,
	}
	if err := history.Save(ctx, record); err != nil {
		logger.Warn("⚠️ Журнал алертов недоступен: %v", err)
	}
}
