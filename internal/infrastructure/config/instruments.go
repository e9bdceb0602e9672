// internal/infrastructure/config/instruments.go
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Классы инструментов: шаг цены зависит от класса
const (
	TierMajor = "major"
	TierMinor = "minor"
)

// Instrument — отслеживаемая пара
type Instrument struct {
	Name            string  `toml:"name"`             // BTCUSDT
	CoinglassSymbol string  `toml:"coinglass_symbol"` // Binance_BTCUSDT#heatmap
	PageTab         string  `toml:"page_tab"`         // Binance BTCUSDT
	PriceSymbol     string  `toml:"price_symbol"`     // символ на Binance
	Tier            string  `toml:"tier"`             // major | minor
	Step            float64 `toml:"step"`             // шаг цены для лестницы входов
}

// instrumentsFile — корень TOML файла
type instrumentsFile struct {
	Instruments []Instrument `toml:"instrument"`
}

// DefaultInstruments BTC и ETH на Binance
func DefaultInstruments() []Instrument {
	return []Instrument{
		{
			Name:            "BTCUSDT",
			CoinglassSymbol: "Binance_BTCUSDT#heatmap",
			PageTab:         "Binance BTCUSDT",
			PriceSymbol:     "BTCUSDT",
			Tier:            TierMajor,
			Step:            100,
		},
		{
			Name:            "ETHUSDT",
			CoinglassSymbol: "Binance_ETHUSDT#heatmap",
			PageTab:         "Binance ETHUSDT",
			PriceSymbol:     "ETHUSDT",
			Tier:            TierMinor,
			Step:            10,
		},
	}
}

// LoadInstruments читает TOML файл; пустой путь или отсутствующий файл → значения по умолчанию
func LoadInstruments(path string) ([]Instrument, error) {
	if path == "" {
		return DefaultInstruments(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("⚠️  Instruments file %s not found, using defaults\n", path)
			return DefaultInstruments(), nil
		}
		return nil, fmt.Errorf("read instruments file: %w", err)
	}

	return ParseInstruments(data)
}

// ParseInstruments разбирает TOML и заполняет пропущенные поля
func ParseInstruments(data []byte) ([]Instrument, error) {
	var file instrumentsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse instruments: %w", err)
	}
	if len(file.Instruments) == 0 {
		return nil, fmt.Errorf("instruments file has no [[instrument]] entries")
	}

	result := make([]Instrument, 0, len(file.Instruments))
	seen := make(map[string]bool)
	for i, inst := range file.Instruments {
		inst.Name = strings.ToUpper(strings.TrimSpace(inst.Name))
		if inst.Name == "" {
			return nil, fmt.Errorf("instrument #%d: name is required", i+1)
		}
		if seen[inst.Name] {
			return nil, fmt.Errorf("instrument %s: duplicate entry", inst.Name)
		}
		seen[inst.Name] = true

		if inst.CoinglassSymbol == "" {
			inst.CoinglassSymbol = "Binance_" + inst.Name + "#heatmap"
		}
		if inst.PageTab == "" {
			inst.PageTab = "Binance " + inst.Name
		}
		if inst.PriceSymbol == "" {
			inst.PriceSymbol = inst.Name
		}
		if inst.Tier == "" {
			inst.Tier = TierMinor
		}
		if inst.Tier != TierMajor && inst.Tier != TierMinor {
			return nil, fmt.Errorf("instrument %s: tier must be major or minor", inst.Name)
		}
		if math.IsNaN(inst.Step) || math.IsInf(inst.Step, 0) {
			return nil, fmt.Errorf("instrument %s: step must be a finite number", inst.Name)
		}
		if inst.Step <= 0 {
			inst.Step = defaultStep(inst.Tier)
		}
		result = append(result, inst)
	}
	return result, nil
}

func defaultStep(tier string) float64 {
	if tier == TierMajor {
		return 100
	}
	return 10
}
