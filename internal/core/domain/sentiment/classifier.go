// internal/core/domain/sentiment/classifier.go
package sentiment

import (
	"fmt"
	"strconv"
	"strings"
)

// band — верхняя граница зоны (включительно) и её тексты
type band struct {
	upper    int
	category Category
	label    string
	advice   string
}

// Зоны идут по возрастанию; последняя покрывает всё выше 80
var bands = []band{
	{20, ExtremeFear, "😱 極度恐懼", "超跌區，可分批佈局"},
	{40, Fear, "😟 恐懼", "觀望或小倉試單"},
	{60, Neutral, "😐 中性", "盤整期，等待方向"},
	{80, Greed, "😏 貪婪", "注意風控，逢高減碼"},
	{MaxScore, ExtremeGreed, "🤪 極度貪婪", "警惕追高風險"},
}

// Clamp приводит значение к шкале 0..100
func Clamp(score int) (int, bool) {
	switch {
	case score < MinScore:
		return MinScore, true
	case score > MaxScore:
		return MaxScore, true
	default:
		return score, false
	}
}

// Classify определяет зону индекса. Значения вне шкалы попадают в крайнюю зону.
func Classify(score int) Classification {
	clamped, wasClamped := Clamp(score)

	for _, b := range bands {
		if clamped <= b.upper {
			return Classification{
				Score:    clamped,
				Category: b.category,
				Label:    b.label,
				Advice:   b.advice,
				Clamped:  wasClamped,
			}
		}
	}

	// недостижимо: последняя зона заканчивается на MaxScore
	last := bands[len(bands)-1]
	return Classification{Score: clamped, Category: last.category, Label: last.label, Advice: last.advice, Clamped: wasClamped}
}

// ParseScore разбирает текст индекса со страницы ("42", " 42 ")
func ParseScore(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty score", ErrMissingInput)
	}
	score, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not a number", ErrMissingInput, trimmed)
	}
	return score, nil
}
