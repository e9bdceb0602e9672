// internal/infrastructure/api/exchanges/binance/client.go
package binance

import (
	"context"
	"errors"
	"fmt"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"crypto-market-pulse-bot/internal/infrastructure/config"
)

// ErrPriceNotFound — биржа не вернула цену по символу
var ErrPriceNotFound = errors.New("binance: price not found")

// pricesService то, что нужно от go-binance
type pricesService interface {
	ListPrices(ctx context.Context, symbol string) ([]*gobinance.SymbolPrice, error)
}

type sdkPrices struct {
	client *gobinance.Client
}

func (s sdkPrices) ListPrices(ctx context.Context, symbol string) ([]*gobinance.SymbolPrice, error) {
	return s.client.NewListPricesService().Symbol(symbol).Do(ctx)
}

// BinanceClient источник последней цены сделки
type BinanceClient struct {
	prices pricesService
}

// NewBinanceClient создает клиента spot API
func NewBinanceClient(cfg config.BinanceConfig) *BinanceClient {
	client := gobinance.NewClient(cfg.ApiKey, cfg.ApiSecret)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return &BinanceClient{prices: sdkPrices{client: client}}
}

// LastPrice возвращает последнюю цену символа
func (c *BinanceClient) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := c.prices.ListPrices(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("binance price %s: %w", symbol, err)
	}

	for _, p := range prices {
		if p == nil || p.Symbol != symbol {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("binance price %s: %q: %w", symbol, p.Price, err)
		}
		if !price.IsPositive() {
			return decimal.Decimal{}, fmt.Errorf("binance price %s: %s: %w", symbol, p.Price, ErrPriceNotFound)
		}
		return price, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%s: %w", symbol, ErrPriceNotFound)
}
