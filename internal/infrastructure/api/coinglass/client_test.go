package coinglass

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/config"
)

const sampleBody = `{
  "code": "0",
  "success": true,
  "data": {
    "data": [
      [1717200000, [["100", "5"]], [["130", "4"]]],
      [1717228800, [[67000.5, 12.5], ["66900", "40"], ["bad", "1"]], [["68000", "30"]]]
    ]
  }
}`

func TestFetchBookSendsWindowAndParsesLastRow(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(config.CoinglassConfig{APIURL: srv.URL, APIKey: "cfg-key"})
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	book, err := c.FetchBook(context.Background(), "Binance_BTCUSDT#heatmap", start, "")
	if err != nil {
		t.Fatal(err)
	}

	if query["symbol"] != "Binance_BTCUSDT#heatmap" || query["interval"] != "d1" || query["minLimit"] != "false" {
		t.Errorf("unexpected query %v", query)
	}
	if query["startTime"] != "1717200000" || query["endTime"] != "1717286400" {
		t.Errorf("unexpected window %s..%s", query["startTime"], query["endTime"])
	}
	if query["data"] != "cfg-key" {
		t.Errorf("expected config key, got %q", query["data"])
	}

	if !book.Timestamp.Equal(time.Unix(1717228800, 0)) {
		t.Errorf("expected last row timestamp, got %v", book.Timestamp)
	}
	if len(book.Bids) != 3 || book.Bids[0][0] != "67000.5" || book.Bids[0][1] != "12.5" {
		t.Errorf("unexpected bids %v", book.Bids)
	}
	if book.Bids[2][0] != "bad" {
		t.Errorf("malformed record should pass through for the tick parser, got %v", book.Bids[2])
	}
	if len(book.Asks) != 1 || book.Asks[0][0] != "68000" {
		t.Errorf("unexpected asks %v", book.Asks)
	}
}

func TestFetchBookTokenOverridesKey(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("data")
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(config.CoinglassConfig{APIURL: srv.URL, APIKey: "cfg-key"})
	if _, err := c.FetchBook(context.Background(), "X", time.Now(), "captured"); err != nil {
		t.Fatal(err)
	}
	if got != "captured" {
		t.Errorf("expected captured token, got %q", got)
	}
}

func TestParseHeatmapEmpty(t *testing.T) {
	for _, body := range []string{`{"data":null}`, `{"data":{"data":[]}}`} {
		if _, err := parseHeatmap([]byte(body)); !errors.Is(err, ErrEmptyHeatmap) {
			t.Errorf("%s: expected ErrEmptyHeatmap, got %v", body, err)
		}
	}
}

func TestParseHeatmapMissingSides(t *testing.T) {
	book, err := parseHeatmap([]byte(`{"data":{"data":[[1717228800]]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(book.Bids) != 0 || len(book.Asks) != 0 {
		t.Errorf("expected empty sides, got %+v", book)
	}
}

func TestParseHeatmapAPIError(t *testing.T) {
	if _, err := parseHeatmap([]byte(`{"success":false,"msg":"token expired"}`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchBookHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(config.CoinglassConfig{APIURL: srv.URL})
	if _, err := c.FetchBook(context.Background(), "X", time.Now(), ""); err == nil {
		t.Fatal("expected error")
	}
}
