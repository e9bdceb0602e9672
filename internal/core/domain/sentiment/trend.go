// internal/core/domain/sentiment/trend.go
package sentiment

// ComputeTrend сравнивает текущее значение с последним сохранённым.
// Без предыдущего значения изменение нулевое.
func ComputeTrend(current int, previous *int) Trend {
	if previous == nil {
		return Trend{Delta: 0, Direction: Flat}
	}

	delta := current - *previous
	switch {
	case delta > 0:
		return Trend{Delta: delta, Direction: Up}
	case delta < 0:
		return Trend{Delta: delta, Direction: Down}
	default:
		return Trend{Delta: 0, Direction: Flat}
	}
}
