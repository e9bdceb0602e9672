// internal/core/domain/sentiment/types.go
package sentiment

import "errors"

// Границы шкалы индекса
const (
	MinScore = 0
	MaxScore = 100
)

// ErrMissingInput — на странице не найден индекс или дата
var ErrMissingInput = errors.New("sentiment: missing input")

// Category — эмоциональная зона индекса
type Category int

const (
	ExtremeFear Category = iota
	Fear
	Neutral
	Greed
	ExtremeGreed
)

// String возвращает машинное имя категории
func (c Category) String() string {
	switch c {
	case ExtremeFear:
		return "extreme_fear"
	case Fear:
		return "fear"
	case Neutral:
		return "neutral"
	case Greed:
		return "greed"
	case ExtremeGreed:
		return "extreme_greed"
	default:
		return "unknown"
	}
}

// Classification — результат классификации
type Classification struct {
	Score    int
	Category Category
	Label    string // эмодзи + название зоны
	Advice   string // рекомендация
	Clamped  bool   // исходное значение было вне 0..100
}

// Reading — одно наблюдение индекса
type Reading struct {
	Score         int
	ObservedDate  string // дата в том виде, как на странице
	PreviousScore *int   // последнее сохранённое значение
}

// Direction — направление изменения за сутки
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// Glyph возвращает значок направления
func (d Direction) Glyph() string {
	switch d {
	case Up:
		return "📈"
	case Down:
		return "📉"
	default:
		return "⏸"
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// Trend — изменение относительно прошлого значения
type Trend struct {
	Delta     int
	Direction Direction
}
