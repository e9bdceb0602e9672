package sentiment

import "testing"

func intPtr(v int) *int { return &v }

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		previous  *int
		delta     int
		direction Direction
		glyph     string
	}{
		{"no previous", 55, nil, 0, Flat, "⏸"},
		{"up", 55, intPtr(50), 5, Up, "📈"},
		{"down", 45, intPtr(50), -5, Down, "📉"},
		{"unchanged", 50, intPtr(50), 0, Flat, "⏸"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTrend(tt.current, tt.previous)
			if got.Delta != tt.delta {
				t.Errorf("expected delta %d, got %d", tt.delta, got.Delta)
			}
			if got.Direction != tt.direction {
				t.Errorf("expected direction %s, got %s", tt.direction, got.Direction)
			}
			if got.Direction.Glyph() != tt.glyph {
				t.Errorf("expected glyph %s, got %s", tt.glyph, got.Direction.Glyph())
			}
		})
	}
}
