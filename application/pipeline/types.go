// application/pipeline/types.go
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crypto-market-pulse-bot/internal/adapters/notification"
	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"
	"crypto-market-pulse-bot/internal/infrastructure/api/coinglass"
	"crypto-market-pulse-bot/internal/infrastructure/browser"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/models"
)

// ErrCycleInProgress: предыдущий цикл того же пайплайна ещё выполняется
var ErrCycleInProgress = errors.New("pipeline: cycle already in progress")

// Названия пайплайнов для логов и метрик
const (
	NameSentiment = "sentiment"
	NameHeatmap   = "heatmap"
)

// ScoreStore хранит вчерашний индекс
type ScoreStore interface {
	Load(ctx context.Context) (score int, ok bool, err error)
	Save(ctx context.Context, score int) error
}

// SentimentCollector снимает страницу индекса
type SentimentCollector interface {
	CaptureSentiment(ctx context.Context, now time.Time) (browser.SentimentCapture, error)
}

// HeatmapScreenshotter снимает графики тепловой карты и перехватывает токен
type HeatmapScreenshotter interface {
	CaptureHeatmaps(ctx context.Context, targets []browser.HeatmapTarget, stamp time.Time) (browser.HeatmapCapture, error)
}

// HeatmapSource отдаёт последнюю строку тепловой карты
type HeatmapSource interface {
	FetchBook(ctx context.Context, symbol string, start time.Time, token string) (coinglass.Book, error)
}

// PriceSource отдаёт последнюю цену сделки
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Dispatcher доставляет алерт
type Dispatcher interface {
	Dispatch(ctx context.Context, alert notification.Alert) error
}

// LevelsRecorder сохраняет ранжированные уровни (Redis)
type LevelsRecorder interface {
	SaveLevels(ctx context.Context, instrument string, sides ...liquidity_levels.RankedLevels) error
}

// AlertRecorder пишет журнал алертов (Postgres)
type AlertRecorder interface {
	Save(ctx context.Context, record *models.AlertRecord) error
}

// HeatmapState — токен API тепловой карты между запусками.
// Передаётся в цикл и возвращается из него; последний записавший побеждает.
type HeatmapState struct {
	AuthToken string    `json:"auth_token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CycleStatus итог цикла
type CycleStatus string

const (
	CycleOK      CycleStatus = "ok"
	CyclePartial CycleStatus = "partial"
	CycleFailed  CycleStatus = "failed"
)

// CycleResult сводка одного цикла
type CycleResult struct {
	ID        uuid.UUID
	Pipeline  string
	Status    CycleStatus
	Started   time.Time
	Finished  time.Time
	Delivered int
	Skipped   []string // инструменты без данных
	Errors    []error
}

func newCycle(pipeline string, now time.Time) CycleResult {
	return CycleResult{ID: uuid.New(), Pipeline: pipeline, Status: CycleOK, Started: now}
}

// Err объединяет ошибки цикла
func (r CycleResult) Err() error {
	return errors.Join(r.Errors...)
}
