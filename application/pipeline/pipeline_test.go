package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"crypto-market-pulse-bot/internal/adapters/notification"
	"crypto-market-pulse-bot/internal/core/domain/analysis/liquidity_levels"
	"crypto-market-pulse-bot/internal/core/domain/sentiment"
	"crypto-market-pulse-bot/internal/delivery/telegram/app/bot/formatters"
	"crypto-market-pulse-bot/internal/infrastructure/api/coinglass"
	"crypto-market-pulse-bot/internal/infrastructure/browser"
	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/models"
)

// ---- fakes ----

type memStore struct {
	mu      sync.Mutex
	score   int
	ok      bool
	saveErr error
}

func (s *memStore) Load(ctx context.Context) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.ok, nil
}

func (s *memStore) Save(ctx context.Context, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.score, s.ok = score, true
	return nil
}

type fakeCollector struct {
	capture browser.SentimentCapture
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (c *fakeCollector) CaptureSentiment(ctx context.Context, now time.Time) (browser.SentimentCapture, error) {
	if c.block != nil {
		close(c.entered)
		<-c.block
	}
	return c.capture, c.err
}

type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []notification.Alert
	err    error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, alert notification.Alert) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, alert)
	return d.err
}

type memHistory struct {
	records []*models.AlertRecord
}

func (h *memHistory) Save(ctx context.Context, r *models.AlertRecord) error {
	h.records = append(h.records, r)
	return nil
}

type fakeSource struct {
	books  map[string]coinglass.Book
	tokens []string
}

func (s *fakeSource) FetchBook(ctx context.Context, symbol string, start time.Time, token string) (coinglass.Book, error) {
	s.tokens = append(s.tokens, token)
	book, ok := s.books[symbol]
	if !ok {
		return coinglass.Book{}, coinglass.ErrEmptyHeatmap
	}
	return book, nil
}

type fixedPrices map[string]decimal.Decimal

func (p fixedPrices) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := p[symbol]
	if !ok {
		return decimal.Decimal{}, errors.New("no price")
	}
	return price, nil
}

type fakeScreens struct {
	capture browser.HeatmapCapture
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeScreens) CaptureHeatmaps(ctx context.Context, targets []browser.HeatmapTarget, stamp time.Time) (browser.HeatmapCapture, error) {
	if s.block != nil {
		close(s.entered)
		<-s.block
	}
	return s.capture, s.err
}

type memLevels struct {
	saved map[string][]liquidity_levels.RankedLevels
}

func (m *memLevels) SaveLevels(ctx context.Context, instrument string, sides ...liquidity_levels.RankedLevels) error {
	if m.saved == nil {
		m.saved = map[string][]liquidity_levels.RankedLevels{}
	}
	m.saved[instrument] = sides
	return nil
}

var fixedNow = time.Date(2024, 5, 2, 4, 5, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// ---- sentiment ----

func newSentiment(c *fakeCollector, s *memStore, d *recordingDispatcher, h *memHistory) *SentimentPipeline {
	deps := SentimentDeps{
		Collector:  c,
		Store:      s,
		Formatter:  formatters.NewAlertFormatter(0),
		Dispatcher: d,
		Now:        clock,
	}
	if h != nil {
		deps.History = h
	}
	return NewSentimentPipeline(deps)
}

func TestSentimentFirstRunIsFlat(t *testing.T) {
	store := &memStore{}
	disp := &recordingDispatcher{}
	history := &memHistory{}
	p := newSentiment(&fakeCollector{capture: browser.SentimentCapture{
		ScoreText: "42", ObservedDate: "2024-05-02", ImagePath: "/tmp/fgi.png",
	}}, store, disp, history)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != CycleOK || result.Delivered != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !store.ok || store.score != 42 {
		t.Errorf("expected stored 42, got %d (%v)", store.score, store.ok)
	}
	if len(disp.alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(disp.alerts))
	}
	alert := disp.alerts[0]
	if alert.Kind != notification.KindSentiment || alert.ImagePath != "/tmp/fgi.png" {
		t.Errorf("unexpected alert %+v", alert)
	}
	if !strings.Contains(alert.Caption, "今日分數：42") || !strings.Contains(alert.Caption, "⏸ 0") {
		t.Errorf("caption missing score/flat delta:\n%s", alert.Caption)
	}
	if len(history.records) != 1 || !history.records[0].Delivered {
		t.Errorf("expected delivered history record, got %+v", history.records)
	}
}

func TestSentimentTrendAgainstPrevious(t *testing.T) {
	store := &memStore{score: 30, ok: true}
	disp := &recordingDispatcher{}
	p := newSentiment(&fakeCollector{capture: browser.SentimentCapture{
		ScoreText: "42", ObservedDate: "2024-05-02",
	}}, store, disp, nil)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(disp.alerts[0].Caption, "+12") {
		t.Errorf("expected +12 delta:\n%s", disp.alerts[0].Caption)
	}
	if store.score != 42 {
		t.Errorf("expected stored 42, got %d", store.score)
	}
}

func TestSentimentClampsOutOfRange(t *testing.T) {
	store := &memStore{}
	disp := &recordingDispatcher{}
	p := newSentiment(&fakeCollector{capture: browser.SentimentCapture{
		ScoreText: "130", ObservedDate: "2024-05-02",
	}}, store, disp, nil)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.score != 100 {
		t.Errorf("expected clamped 100, got %d", store.score)
	}
}

func TestSentimentMissingScoreFailsCycle(t *testing.T) {
	store := &memStore{score: 30, ok: true}
	disp := &recordingDispatcher{}
	p := newSentiment(&fakeCollector{capture: browser.SentimentCapture{
		ScoreText: "", ObservedDate: "2024-05-02",
	}}, store, disp, nil)

	result, err := p.Run(context.Background())
	if !errors.Is(err, sentiment.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if result.Status != CycleFailed {
		t.Errorf("expected failed, got %s", result.Status)
	}
	if len(disp.alerts) != 0 {
		t.Errorf("expected no alert, got %d", len(disp.alerts))
	}
	if store.score != 30 {
		t.Errorf("stored score must stay 30, got %d", store.score)
	}
}

func TestSentimentDispatchFailureKeepsSavedScore(t *testing.T) {
	store := &memStore{}
	disp := &recordingDispatcher{err: errors.New("telegram down")}
	history := &memHistory{}
	p := newSentiment(&fakeCollector{capture: browser.SentimentCapture{
		ScoreText: "55", ObservedDate: "2024-05-02",
	}}, store, disp, history)

	result, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if result.Status != CyclePartial {
		t.Errorf("expected partial, got %s", result.Status)
	}
	if store.score != 55 {
		t.Errorf("expected stored 55, got %d", store.score)
	}
	if len(history.records) != 1 || history.records[0].Delivered {
		t.Errorf("expected undelivered history record, got %+v", history.records)
	}
}

func TestSentimentRejectsOverlappingRun(t *testing.T) {
	collector := &fakeCollector{
		capture: browser.SentimentCapture{ScoreText: "50", ObservedDate: "2024-05-02"},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	p := newSentiment(collector, &memStore{}, &recordingDispatcher{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background())
		done <- err
	}()
	<-collector.entered

	if _, err := p.Run(context.Background()); !errors.Is(err, ErrCycleInProgress) {
		t.Errorf("expected ErrCycleInProgress, got %v", err)
	}

	close(collector.block)
	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}

// ---- heatmap ----

var (
	btc = config.Instrument{Name: "BTCUSDT", CoinglassSymbol: "Binance_BTCUSDT#heatmap", PageTab: "Binance BTCUSDT", PriceSymbol: "BTCUSDT", Step: 10}
	eth = config.Instrument{Name: "ETHUSDT", CoinglassSymbol: "Binance_ETHUSDT#heatmap", PageTab: "Binance ETHUSDT", PriceSymbol: "ETHUSDT", Step: 10}
)

func TestHeatmapLongIdea(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	source := &fakeSource{books: map[string]coinglass.Book{
		btc.CoinglassSymbol: {
			Timestamp: fixedNow,
			Bids:      [][]string{{"100", "5"}, {"90", "1"}},
			Asks:      [][]string{{"130", "4"}, {"140", "1"}},
		},
	}}
	disp := &recordingDispatcher{}
	levels := &memLevels{}
	history := &memHistory{}

	p := NewHeatmapPipeline(HeatmapDeps{
		Instruments: []config.Instrument{btc},
		Source:      source,
		Screenshots: &fakeScreens{capture: browser.HeatmapCapture{
			Images: map[string]string{"BTCUSDT": "/tmp/btc.png"},
			Token:  "fresh-token",
		}},
		Prices:     fixedPrices{"BTCUSDT": decimal.NewFromInt(104)},
		Formatter:  formatters.NewAlertFormatter(3),
		Dispatcher: disp,
		Levels:     levels,
		History:    history,
		Location:   taipei,
		Now:        clock,
	})

	state, result, err := p.Run(context.Background(), HeatmapState{AuthToken: "stale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != CycleOK || result.Delivered != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if state.AuthToken != "fresh-token" || !state.UpdatedAt.Equal(fixedNow) {
		t.Errorf("expected refreshed token, got %+v", state)
	}
	if len(source.tokens) != 1 || source.tokens[0] != "fresh-token" {
		t.Errorf("expected fetch with fresh token, got %v", source.tokens)
	}

	sides := levels.saved["BTCUSDT"]
	if len(sides) != 2 {
		t.Fatalf("expected support+resistance saved, got %d", len(sides))
	}
	support, ok := sides[0].Best()
	if !ok || !support.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected best support 100, got %+v", support)
	}

	alert := disp.alerts[0]
	if alert.Kind != notification.KindHeatmap || alert.ImagePath != "/tmp/btc.png" {
		t.Errorf("unexpected alert %+v", alert)
	}
	// 04:05 UTC это уже 12:05 по Тайбэю
	if !strings.Contains(alert.Caption, "BTCUSDT（2024-05-02）") || !strings.Contains(alert.Caption, "偏多") {
		t.Errorf("caption missing instrument/date:\n%s", alert.Caption)
	}
	if len(history.records) != 1 || history.records[0].Instrument != "BTCUSDT" {
		t.Errorf("unexpected history %+v", history.records)
	}
}

func TestHeatmapSkipsInstrumentWithoutData(t *testing.T) {
	source := &fakeSource{books: map[string]coinglass.Book{
		eth.CoinglassSymbol: {
			Timestamp: fixedNow,
			Bids:      [][]string{{"3000", "2"}, {"bad", "1"}},
			Asks:      [][]string{},
		},
	}}
	disp := &recordingDispatcher{}

	p := NewHeatmapPipeline(HeatmapDeps{
		Instruments: []config.Instrument{btc, eth},
		Source:      source,
		Formatter:   formatters.NewAlertFormatter(3),
		Dispatcher:  disp,
		Now:         clock,
	})

	state, result, err := p.Run(context.Background(), HeatmapState{AuthToken: "keep"})
	if err == nil || !errors.Is(err, coinglass.ErrEmptyHeatmap) {
		t.Fatalf("expected ErrEmptyHeatmap in joined error, got %v", err)
	}
	if result.Status != CyclePartial {
		t.Errorf("expected partial, got %s", result.Status)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "BTCUSDT" {
		t.Errorf("expected BTCUSDT skipped, got %v", result.Skipped)
	}
	if state.AuthToken != "keep" {
		t.Errorf("token must be kept without screenshots, got %q", state.AuthToken)
	}
	if len(disp.alerts) != 1 {
		t.Fatalf("expected one alert for ETHUSDT, got %d", len(disp.alerts))
	}
	// без цены и без сопротивления: нейтрально, но уровни выводятся
	if !strings.Contains(disp.alerts[0].Caption, "$3,000") {
		t.Errorf("expected support level in caption:\n%s", disp.alerts[0].Caption)
	}
}

func TestHeatmapAllInstrumentsFailed(t *testing.T) {
	p := NewHeatmapPipeline(HeatmapDeps{
		Instruments: []config.Instrument{btc, eth},
		Source:      &fakeSource{},
		Screenshots: &fakeScreens{err: errors.New("chrome missing")},
		Formatter:   formatters.NewAlertFormatter(3),
		Dispatcher:  &recordingDispatcher{},
		Now:         clock,
	})

	_, result, err := p.Run(context.Background(), HeatmapState{})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Status != CycleFailed {
		t.Errorf("expected failed, got %s", result.Status)
	}
	if len(result.Skipped) != 2 {
		t.Errorf("expected both skipped, got %v", result.Skipped)
	}
}

func TestHeatmapRejectsOverlappingRun(t *testing.T) {
	screens := &fakeScreens{
		capture: browser.HeatmapCapture{Token: "fresh-token"},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	p := NewHeatmapPipeline(HeatmapDeps{
		Instruments: []config.Instrument{eth},
		Source: &fakeSource{books: map[string]coinglass.Book{
			eth.CoinglassSymbol: {Timestamp: fixedNow, Bids: [][]string{{"3000", "2"}}},
		}},
		Screenshots: screens,
		Formatter:   formatters.NewAlertFormatter(3),
		Dispatcher:  &recordingDispatcher{},
		Now:         clock,
	})

	done := make(chan error, 1)
	go func() {
		_, _, err := p.Run(context.Background(), HeatmapState{AuthToken: "first"})
		done <- err
	}()
	<-screens.entered

	prev := HeatmapState{AuthToken: "second", UpdatedAt: fixedNow.Add(-time.Hour)}
	state, result, err := p.Run(context.Background(), prev)
	if !errors.Is(err, ErrCycleInProgress) {
		t.Errorf("expected ErrCycleInProgress, got %v", err)
	}
	if state != prev {
		t.Errorf("state must be returned unchanged, got %+v", state)
	}
	if result.Delivered != 0 {
		t.Errorf("expected nothing delivered by rejected run, got %d", result.Delivered)
	}

	close(screens.block)
	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}
