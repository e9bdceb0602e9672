// internal/core/domain/analysis/bias/synthesizer.go
package bias

import (
	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"

	"github.com/shopspring/decimal"
)

// Synthesize строит торговую идею по текущей цене и крупнейшим уровням.
//
// Поддержка проверяется первой: если цена в пределах 5 шагов над поддержкой → long,
// иначе если в пределах 5 шагов под сопротивлением → short, иначе нейтрально.
func Synthesize(inst Instrument, currentPrice *decimal.Decimal, support, resistance liquidity_levels.RankedLevels) TradeBias {
	result := TradeBias{Instrument: inst.Name, Direction: DirectionNeutral}

	sup, okSup := support.Best()
	res, okRes := resistance.Best()
	if currentPrice == nil || !okSup || !okRes {
		result.Insufficient = true
		result.Note = NoteInsufficientData
		return result
	}

	price := *currentPrice
	step := inst.Step
	band := step.Mul(decimal.NewFromInt(proximitySteps))
	stopOffset := step.Mul(decimal.NewFromInt(stopSteps))

	result.CurrentPrice = price

	switch {
	case price.Sub(sup.Price).LessThanOrEqual(band):
		stop := sup.Price.Sub(stopOffset)
		result.Direction = DirectionLong
		result.EntryAnchor = sup.Price
		result.Target = res.Price
		result.Stop = stop
		result.RiskReward = ratio(res.Price.Sub(price), price.Sub(stop))
		result.Ladder = ladder(sup.Price, step.Neg())

	case res.Price.Sub(price).LessThanOrEqual(band):
		stop := res.Price.Add(stopOffset)
		result.Direction = DirectionShort
		result.EntryAnchor = res.Price
		result.Target = sup.Price
		result.Stop = stop
		result.RiskReward = ratio(res.Price.Sub(sup.Price), stop.Sub(price))
		result.Ladder = ladder(res.Price, step)

	default:
		result.Note = NoteMidRange
	}

	return result
}

// ratio возвращает 0, если знаменатель не положителен
func ratio(reward, risk decimal.Decimal) decimal.Decimal {
	if !risk.IsPositive() {
		return decimal.Zero
	}
	return reward.Div(risk)
}

// ladder: anchor, anchor+delta, anchor+2·delta
func ladder(anchor, delta decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, ladderSize)
	for i := range out {
		out[i] = anchor.Add(delta.Mul(decimal.NewFromInt(int64(i))))
	}
	return out
}
