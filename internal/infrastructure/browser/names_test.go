package browser

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileNames(t *testing.T) {
	loc := time.FixedZone("Asia/Taipei", 8*3600)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, loc)

	if got := sentimentFileName(at); got != "fgi-2024-06-01.png" {
		t.Errorf("sentiment file name: %s", got)
	}
	if got := heatmapFileName("BTCUSDT", at); got != "btcusdt_20240601_0800.png" {
		t.Errorf("heatmap file name: %s", got)
	}
	if got := screenshotPath("screenshots", "a.png"); got != filepath.Join("screenshots", "a.png") {
		t.Errorf("path: %s", got)
	}
}

func TestHeatmapCanvasSelector(t *testing.T) {
	if got := heatmapCanvasSelector("Binance BTCUSDT"); got != "#coinglass-kline-Binance-BTCUSDT canvas" {
		t.Errorf("unexpected selector %s", got)
	}
}

func TestTokenFromRequestURL(t *testing.T) {
	cases := []struct {
		url   string
		token string
		ok    bool
	}{
		{"https://capi.coinglass.com/liquidity-heatmap/api/liquidity/v4/heatmap?symbol=X&data=abc%2B1%3D", "abc+1=", true},
		{"https://capi.coinglass.com/liquidity-heatmap/api/liquidity/v4/heatmap?symbol=X", "", false},
		{"https://www.coinglass.com/api/other?data=zzz", "", false},
		{"::bad::", "", false},
	}
	for _, c := range cases {
		token, ok := tokenFromRequestURL(c.url)
		if token != c.token || ok != c.ok {
			t.Errorf("%s: got %q/%v, want %q/%v", c.url, token, ok, c.token, c.ok)
		}
	}
}

func TestTokenRecorderKeepsLatest(t *testing.T) {
	r := &tokenRecorder{}
	r.observe("https://capi.coinglass.com/liquidity-heatmap/x?data=first")
	r.observe("https://www.coinglass.com/static/app.js")
	r.observe("https://capi.coinglass.com/liquidity-heatmap/x?data=second")
	if got := r.value(); got != "second" {
		t.Errorf("expected second, got %q", got)
	}
}

func TestSelectTabJSQuotesTab(t *testing.T) {
	js := selectTabJS(`Binance "BTC"`)
	if want := `"Binance \"BTC\""`; !strings.Contains(js, want) {
		t.Errorf("expected quoted tab %s in script", want)
	}
}
