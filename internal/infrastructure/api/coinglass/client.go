// internal/infrastructure/api/coinglass/client.go
package coinglass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/config"
	"crypto-market-pulse-bot/pkg/logger"
)

// Client — клиент REST API тепловой карты ликвидности Coinglass
type Client struct {
	httpClient *http.Client
	baseURL    string
	interval   string
	apiKey     string
}

// NewClient создает клиента
func NewClient(cfg config.CoinglassConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	interval := cfg.Interval
	if interval == "" {
		interval = "d1"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.APIURL,
		interval:   interval,
		apiKey:     cfg.APIKey,
	}
}

// FetchBook запрашивает суточное окно [start, start+24h) и возвращает последнюю строку.
// token заменяет ключ из конфигурации, если не пуст.
func (c *Client) FetchBook(ctx context.Context, symbol string, start time.Time, token string) (Book, error) {
	key := c.apiKey
	if token != "" {
		key = token
	}

	ts := start.Unix()
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", c.interval)
	params.Set("startTime", strconv.FormatInt(ts, 10))
	params.Set("endTime", strconv.FormatInt(ts+86400, 10))
	params.Set("minLimit", "false")
	params.Set("data", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Book{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CryptoMarketPulseBot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Book{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Book{}, fmt.Errorf("coinglass API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Book{}, fmt.Errorf("failed to read response: %w", err)
	}

	book, err := parseHeatmap(body)
	if err != nil {
		return Book{}, fmt.Errorf("%s: %w", symbol, err)
	}

	logger.Debug("🌡 Coinglass %s: %d bids, %d asks на %s",
		symbol, len(book.Bids), len(book.Asks), book.Timestamp.Format(time.RFC3339))
	return book, nil
}

// parseHeatmap достаёт последнюю строку [ts, bids, asks] из data.data
func parseHeatmap(body []byte) (Book, error) {
	var resp heatmapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Book{}, fmt.Errorf("failed to parse coinglass response: %w", err)
	}
	if resp.Success != nil && !*resp.Success {
		return Book{}, fmt.Errorf("coinglass API error: %s", resp.Msg)
	}
	if resp.Data == nil || len(resp.Data.Data) == 0 {
		return Book{}, ErrEmptyHeatmap
	}

	var row []json.RawMessage
	if err := json.Unmarshal(resp.Data.Data[len(resp.Data.Data)-1], &row); err != nil {
		return Book{}, fmt.Errorf("malformed heatmap row: %w", err)
	}
	if len(row) == 0 {
		return Book{}, ErrEmptyHeatmap
	}

	var ts float64
	if err := json.Unmarshal(row[0], &ts); err != nil {
		return Book{}, fmt.Errorf("malformed heatmap timestamp: %w", err)
	}

	book := Book{Timestamp: time.Unix(int64(ts), 0)}
	var err error
	if len(row) > 1 {
		if book.Bids, err = decodePairs(row[1]); err != nil {
			return Book{}, fmt.Errorf("bids: %w", err)
		}
	}
	if len(row) > 2 {
		if book.Asks, err = decodePairs(row[2]); err != nil {
			return Book{}, fmt.Errorf("asks: %w", err)
		}
	}
	return book, nil
}

// decodePairs превращает [[p, s], ...] в строки; числа и строки допустимы.
// Отдельные неразборчивые значения остаются пустыми и отсеиваются парсером тиков.
func decodePairs(raw json.RawMessage) ([][]string, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var records [][]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	out := make([][]string, len(records))
	for i, rec := range records {
		fields := make([]string, len(rec))
		for j, f := range rec {
			fields[j] = scalar(f)
		}
		out[i] = fields
	}
	return out, nil
}

func scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	return ""
}
