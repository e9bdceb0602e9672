// internal/delivery/telegram/app/bot/formatters/number.go
package formatters

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NumberFormatter отвечает за форматирование чисел
type NumberFormatter struct{}

// NewNumberFormatter создает новый форматтер чисел
func NewNumberFormatter() *NumberFormatter {
	return &NumberFormatter{}
}

var thousand = decimal.NewFromInt(1000)

// FormatPrice форматирует цену с учетом ее величины:
// от 1000 с разделителями и до 2 знаков после запятой, от 1 до 2 знаков, иначе до 6
func (f *NumberFormatter) FormatPrice(price decimal.Decimal) string {
	abs := price.Abs()
	switch {
	case abs.GreaterThanOrEqual(thousand):
		return groupThousands(price.Round(2).String())
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return price.Round(2).String()
	default:
		return price.Round(6).String()
	}
}

// FormatRiskReward форматирует соотношение как 1:X.XX
func (f *NumberFormatter) FormatRiskReward(rr decimal.Decimal) string {
	return "1:" + rr.StringFixed(2)
}

// groupThousands вставляет запятые в целую часть: 68000 → 68,000
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sign + sb.String() + frac
}
