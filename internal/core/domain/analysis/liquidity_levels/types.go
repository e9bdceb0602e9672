// internal/core/domain/analysis/liquidity_levels/types.go
package liquidity_levels

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side — сторона стакана
type Side string

const (
	SideBid Side = "bid" // заявки на покупку → поддержка
	SideAsk Side = "ask" // заявки на продажу → сопротивление
)

// PriceTick — сырая точка тепловой карты
type PriceTick struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// PriceLevel — уровень после объединения одинаковых цен
type PriceLevel struct {
	Price          decimal.Decimal `json:"price"`
	AggregatedSize decimal.Decimal `json:"aggregated_size"`
}

// RankedLevels — топ уровней одной стороны, по убыванию объёма
type RankedLevels struct {
	Side   Side         `json:"side"`
	Levels []PriceLevel `json:"levels"`
}

// Best возвращает крупнейший уровень
func (r RankedLevels) Best() (PriceLevel, bool) {
	if len(r.Levels) == 0 {
		return PriceLevel{}, false
	}
	return r.Levels[0], true
}

// Snapshot — срез тепловой карты по инструменту
type Snapshot struct {
	Instrument      string
	AsOf            time.Time
	Bids            []PriceTick
	Asks            []PriceTick
	LastTradedPrice *decimal.Decimal
}
