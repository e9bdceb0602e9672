// internal/core/domain/analysis/liquidity_levels/aggregator.go
package liquidity_levels

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTopN — сколько уровней показываем на сторону
	DefaultTopN = 5

	// wallMultiplier — уровень должен быть минимум в 3× больше среднего тика
	wallMultiplier = 3
)

// Aggregate объединяет тики с одинаковой ценой, отбрасывает всё ниже 3× среднего
// и возвращает topN крупнейших уровней.
//
// Среднее считается по сырым тикам до объединения. Пустая сторона даёт пустой список.
func Aggregate(side Side, ticks []PriceTick, topN int) RankedLevels {
	if topN <= 0 {
		topN = DefaultTopN
	}

	result := RankedLevels{Side: side, Levels: []PriceLevel{}}
	if len(ticks) == 0 {
		return result
	}

	levels := mergeByPrice(ticks)
	threshold := meanSize(ticks).Mul(decimal.NewFromInt(wallMultiplier))

	for _, lvl := range levels {
		if lvl.AggregatedSize.GreaterThanOrEqual(threshold) {
			result.Levels = append(result.Levels, lvl)
		}
	}

	sortLevels(result.Levels)

	if len(result.Levels) > topN {
		result.Levels = result.Levels[:topN]
	}
	return result
}

// AggregateSnapshot строит поддержку (bids) и сопротивление (asks)
func AggregateSnapshot(s Snapshot, topN int) (support, resistance RankedLevels) {
	return Aggregate(SideBid, s.Bids, topN), Aggregate(SideAsk, s.Asks, topN)
}

// mergeByPrice суммирует объёмы по точному совпадению цены, сохраняя порядок появления
func mergeByPrice(ticks []PriceTick) []PriceLevel {
	index := make(map[string]int, len(ticks))
	levels := make([]PriceLevel, 0, len(ticks))

	for _, tick := range ticks {
		// String() нормализует хвостовые нули: 100 и 100.0 это один уровень
		key := tick.Price.String()
		if i, ok := index[key]; ok {
			levels[i].AggregatedSize = levels[i].AggregatedSize.Add(tick.Size)
			continue
		}
		index[key] = len(levels)
		levels = append(levels, PriceLevel{Price: tick.Price, AggregatedSize: tick.Size})
	}
	return levels
}

// meanSize — среднее по сырым тикам; для пустого списка делитель 1
func meanSize(ticks []PriceTick) decimal.Decimal {
	sum := decimal.Zero
	for _, tick := range ticks {
		sum = sum.Add(tick.Size)
	}
	n := len(ticks)
	if n == 0 {
		n = 1
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// sortLevels: объём по убыванию, при равенстве цена по убыванию
func sortLevels(levels []PriceLevel) {
	sort.SliceStable(levels, func(i, j int) bool {
		if c := levels[i].AggregatedSize.Cmp(levels[j].AggregatedSize); c != 0 {
			return c > 0
		}
		return levels[i].Price.GreaterThan(levels[j].Price)
	})
}
