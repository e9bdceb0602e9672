package sentiment

import (
	"errors"
	"testing"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score    int
		category Category
		label    string
	}{
		{0, ExtremeFear, "😱 極度恐懼"},
		{20, ExtremeFear, "😱 極度恐懼"},
		{21, Fear, "😟 恐懼"},
		{40, Fear, "😟 恐懼"},
		{41, Neutral, "😐 中性"},
		{60, Neutral, "😐 中性"},
		{61, Greed, "😏 貪婪"},
		{80, Greed, "😏 貪婪"},
		{81, ExtremeGreed, "🤪 極度貪婪"},
		{100, ExtremeGreed, "🤪 極度貪婪"},
	}

	for _, tt := range tests {
		got := Classify(tt.score)
		if got.Category != tt.category {
			t.Errorf("Classify(%d): expected %s, got %s", tt.score, tt.category, got.Category)
		}
		if got.Label != tt.label {
			t.Errorf("Classify(%d): expected label %q, got %q", tt.score, tt.label, got.Label)
		}
		if got.Clamped {
			t.Errorf("Classify(%d): expected in-range score not to be clamped", tt.score)
		}
	}
}

func TestClassifyAdvice(t *testing.T) {
	if got := Classify(10).Advice; got != "超跌區，可分批佈局" {
		t.Errorf("unexpected advice %q", got)
	}
	if got := Classify(90).Advice; got != "警惕追高風險" {
		t.Errorf("unexpected advice %q", got)
	}
}

func TestClassifyClampsOutOfRange(t *testing.T) {
	low := Classify(-5)
	if low.Category != ExtremeFear || low.Score != 0 || !low.Clamped {
		t.Errorf("expected -5 to clamp to 0/ExtremeFear, got %+v", low)
	}

	high := Classify(130)
	if high.Category != ExtremeGreed || high.Score != 100 || !high.Clamped {
		t.Errorf("expected 130 to clamp to 100/ExtremeGreed, got %+v", high)
	}
}

func TestParseScore(t *testing.T) {
	score, err := ParseScore(" 42\n")
	if err != nil || score != 42 {
		t.Errorf("expected 42, got %d (%v)", score, err)
	}

	for _, bad := range []string{"", "   ", "N/A", "4 2"} {
		if _, err := ParseScore(bad); !errors.Is(err, ErrMissingInput) {
			t.Errorf("ParseScore(%q): expected ErrMissingInput, got %v", bad, err)
		}
	}
}
