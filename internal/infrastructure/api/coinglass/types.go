// internal/infrastructure/api/coinglass/types.go
package coinglass

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrEmptyHeatmap — API ответило без строк тепловой карты
var ErrEmptyHeatmap = errors.New("coinglass: empty heatmap")

// heatmapResponse — конверт ответа: полезная нагрузка лежит в data.data
type heatmapResponse struct {
	Code    json.RawMessage `json:"code"`
	Msg     string          `json:"msg"`
	Success *bool           `json:"success"`
	Data    *struct {
		Data []json.RawMessage `json:"data"`
	} `json:"data"`
}

// Book — последняя строка тепловой карты: время и сырые пары (цена, объём)
type Book struct {
	Timestamp time.Time
	Bids      [][]string
	Asks      [][]string
}
