package bias

import (
	"testing"

	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func dp(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

func levels(side liquidity_levels.Side, prices ...int64) liquidity_levels.RankedLevels {
	r := liquidity_levels.RankedLevels{Side: side}
	for i, p := range prices {
		r.Levels = append(r.Levels, liquidity_levels.PriceLevel{
			Price:          d(p),
			AggregatedSize: d(int64(100 - i)),
		})
	}
	return r
}

var testInst = Instrument{Name: "TEST", Step: d(10)}

func assertLadder(t *testing.T, got []decimal.Decimal, want ...int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected ladder %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Equal(d(want[i])) {
			t.Errorf("ladder[%d]: expected %d, got %s", i, want[i], got[i])
		}
	}
}

func TestSynthesizeLongNearSupport(t *testing.T) {
	got := Synthesize(testInst, dp(104),
		levels(liquidity_levels.SideBid, 100),
		levels(liquidity_levels.SideAsk, 130))

	if got.Direction != DirectionLong {
		t.Fatalf("expected long, got %s", got.Direction)
	}
	if !got.Stop.Equal(d(70)) {
		t.Errorf("expected stop 70, got %s", got.Stop)
	}
	if !got.EntryAnchor.Equal(d(100)) || !got.Target.Equal(d(130)) {
		t.Errorf("expected entry 100 target 130, got %s / %s", got.EntryAnchor, got.Target)
	}
	assertLadder(t, got.Ladder, 100, 90, 80)

	wantRR := d(26).Div(d(34))
	if !got.RiskReward.Equal(wantRR) {
		t.Errorf("expected R/R %s, got %s", wantRR, got.RiskReward)
	}
	if got.Insufficient || got.Note != "" {
		t.Errorf("expected no note, got %q", got.Note)
	}
}

func TestSynthesizeShortNearResistance(t *testing.T) {
	got := Synthesize(testInst, dp(125),
		levels(liquidity_levels.SideBid, 50),
		levels(liquidity_levels.SideAsk, 130))

	if got.Direction != DirectionShort {
		t.Fatalf("expected short, got %s", got.Direction)
	}
	if !got.Stop.Equal(d(160)) {
		t.Errorf("expected stop 160, got %s", got.Stop)
	}
	assertLadder(t, got.Ladder, 130, 140, 150)

	// (130-50)/(160-125) = 80/35
	wantRR := d(80).Div(d(35))
	if !got.RiskReward.Equal(wantRR) {
		t.Errorf("expected R/R %s, got %s", wantRR, got.RiskReward)
	}
	if !got.Target.Equal(d(50)) {
		t.Errorf("expected target 50, got %s", got.Target)
	}
}

func TestSynthesizeSupportHasPriority(t *testing.T) {
	// цена в зоне обоих уровней → long
	got := Synthesize(testInst, dp(110),
		levels(liquidity_levels.SideBid, 100),
		levels(liquidity_levels.SideAsk, 120))
	if got.Direction != DirectionLong {
		t.Errorf("expected long when both bands match, got %s", got.Direction)
	}
}

func TestSynthesizeMidRange(t *testing.T) {
	got := Synthesize(testInst, dp(200),
		levels(liquidity_levels.SideBid, 100),
		levels(liquidity_levels.SideAsk, 300))
	if got.Direction != DirectionNeutral {
		t.Fatalf("expected neutral, got %s", got.Direction)
	}
	if got.Note != NoteMidRange || got.Insufficient {
		t.Errorf("expected mid-range note, got %q (insufficient=%v)", got.Note, got.Insufficient)
	}
	if got.Ladder != nil || got.HasPlan() {
		t.Errorf("expected no plan, got %+v", got)
	}
}

func TestSynthesizeUsesLargestLevel(t *testing.T) {
	// первый уровень в списке крупнейший, даже если дальше от цены
	got := Synthesize(testInst, dp(104),
		levels(liquidity_levels.SideBid, 100, 103),
		levels(liquidity_levels.SideAsk, 130, 110))
	if !got.EntryAnchor.Equal(d(100)) || !got.Target.Equal(d(130)) {
		t.Errorf("expected anchors from largest levels, got %s / %s", got.EntryAnchor, got.Target)
	}
}

func TestSynthesizeInsufficientData(t *testing.T) {
	sup := levels(liquidity_levels.SideBid, 100)
	res := levels(liquidity_levels.SideAsk, 130)
	empty := liquidity_levels.RankedLevels{}

	cases := map[string]TradeBias{
		"no price":         Synthesize(testInst, nil, sup, res),
		"no support":       Synthesize(testInst, dp(104), empty, res),
		"no resistance":    Synthesize(testInst, dp(104), sup, empty),
		"no levels at all": Synthesize(testInst, dp(104), empty, empty),
	}
	for name, got := range cases {
		if got.Direction != DirectionNeutral || !got.Insufficient {
			t.Errorf("%s: expected neutral/insufficient, got %+v", name, got)
		}
		if got.Note != NoteInsufficientData {
			t.Errorf("%s: expected note %q, got %q", name, NoteInsufficientData, got.Note)
		}
		if !got.Stop.IsZero() || got.Ladder != nil {
			t.Errorf("%s: expected no numeric fields, got %+v", name, got)
		}
	}
}

func TestSynthesizeZeroDenominator(t *testing.T) {
	// цена ниже стопа → знаменатель отрицательный → R/R 0
	got := Synthesize(testInst, dp(60),
		levels(liquidity_levels.SideBid, 100),
		levels(liquidity_levels.SideAsk, 130))
	if got.Direction != DirectionLong {
		t.Fatalf("expected long, got %s", got.Direction)
	}
	if !got.RiskReward.IsZero() {
		t.Errorf("expected R/R 0, got %s", got.RiskReward)
	}

	// цена ровно на стопе → знаменатель 0
	got = Synthesize(testInst, dp(70),
		levels(liquidity_levels.SideBid, 100),
		levels(liquidity_levels.SideAsk, 130))
	if !got.RiskReward.IsZero() {
		t.Errorf("expected R/R 0 at stop, got %s", got.RiskReward)
	}
}
