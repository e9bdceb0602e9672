// internal/core/domain/analysis/bias/types.go
package bias

import "github.com/shopspring/decimal"

// Direction — торговое направление
type Direction string

const (
	DirectionLong    Direction = "long"
	DirectionShort   Direction = "short"
	DirectionNeutral Direction = "neutral"
)

// Пояснения для нейтрального результата
const (
	NoteInsufficientData = "資料不足"
	NoteMidRange         = "區間中段，風險報酬不佳"
)

// Параметры лестницы в шагах цены
const (
	proximitySteps = 5 // ширина зоны «у уровня»
	stopSteps      = 3 // отступ стопа за уровень
	ladderSize     = 3 // количество входов
)

// Instrument — то, что нужно синтезатору про инструмент
type Instrument struct {
	Name string
	Step decimal.Decimal // шаг цены: 100 для BTC, 10 для ETH
}

// TradeBias — итоговая торговая идея
type TradeBias struct {
	Instrument   string
	Direction    Direction
	CurrentPrice decimal.Decimal
	EntryAnchor  decimal.Decimal
	Target       decimal.Decimal
	Stop         decimal.Decimal
	RiskReward   decimal.Decimal
	Ladder       []decimal.Decimal
	Note         string
	Insufficient bool
}

// HasPlan — есть ли числовой план (long/short)
func (b TradeBias) HasPlan() bool {
	return b.Direction == DirectionLong || b.Direction == DirectionShort
}
