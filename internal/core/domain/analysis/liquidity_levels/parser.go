// internal/core/domain/analysis/liquidity_levels/parser.go
package liquidity_levels

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RejectedTick — запись, отброшенная при разборе
type RejectedTick struct {
	Index  int
	Reason string
}

// ParseTicks превращает пары [price, size] из API в тики.
// Битые записи отбрасываются по одной, остальные сохраняются.
func ParseTicks(raw [][]string) ([]PriceTick, []RejectedTick) {
	ticks := make([]PriceTick, 0, len(raw))
	var rejected []RejectedTick

	for i, pair := range raw {
		tick, err := parsePair(pair)
		if err != nil {
			rejected = append(rejected, RejectedTick{Index: i, Reason: err.Error()})
			continue
		}
		ticks = append(ticks, tick)
	}
	return ticks, rejected
}

func parsePair(pair []string) (PriceTick, error) {
	if len(pair) < 2 {
		return PriceTick{}, fmt.Errorf("expected [price, size], got %d fields", len(pair))
	}

	price, err := decimal.NewFromString(strings.TrimSpace(pair[0]))
	if err != nil {
		return PriceTick{}, fmt.Errorf("price %q is not numeric", pair[0])
	}
	size, err := decimal.NewFromString(strings.TrimSpace(pair[1]))
	if err != nil {
		return PriceTick{}, fmt.Errorf("size %q is not numeric", pair[1])
	}
	if !price.IsPositive() {
		return PriceTick{}, fmt.Errorf("price %s must be positive", price)
	}
	if size.IsNegative() {
		return PriceTick{}, fmt.Errorf("size %s must not be negative", size)
	}
	return PriceTick{Price: price, Size: size}, nil
}
