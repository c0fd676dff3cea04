package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/models"
)

// fileCandleSource serves candles loaded once from a JSON file keyed by
// symbol, e.g. {"BTCUSDT": [{"time": "...", "open": 1, ...}]}.
type fileCandleSource struct {
	bySymbol map[string][]models.Candle
}

// LoadCandleFile reads a candle snapshot. It should be called once at startup.
func LoadCandleFile(filePath string) (CandleSource, error) {
	logger.L.Info("Loading candle snapshot", "path", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading candle file '%s': %w", filePath, err)
	}

	var raw map[string][]models.Candle
	if err := json.Unmarshal(file, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling candles from '%s': %w", filePath, err)
	}

	src := &fileCandleSource{bySymbol: make(map[string][]models.Candle, len(raw))}
	total := 0
	for symbol, candles := range raw {
		sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
		src.bySymbol[normalizeSymbol(symbol)] = candles
		total += len(candles)
	}
	logger.L.Info("Candle snapshot loaded", "path", filePath, "symbols", len(src.bySymbol), "candleCount", total)
	return src, nil
}

func (s *fileCandleSource) Candles(_ context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	all, ok := s.bySymbol[normalizeSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: no candles for %s", ErrMarketDataUnavailable, symbol)
	}
	var out []models.Candle
	for _, c := range all {
		if !c.Time.Before(start) && !c.Time.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "/", ""))
}
