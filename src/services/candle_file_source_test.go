package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCandleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.json")
	content := `{"btc/usdt": [
		{"time": "2024-01-03T00:00:00Z", "open": 3, "high": 3, "low": 3, "close": 3, "volume": 30},
		{"time": "2024-01-01T00:00:00Z", "open": 1, "high": 1, "low": 1, "close": 1, "volume": 10},
		{"time": "2024-01-02T00:00:00Z", "open": 2, "high": 2, "low": 2, "close": 2, "volume": 20}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src, err := LoadCandleFile(path)
	require.NoError(t, err)

	candles, err := src.Candles(context.Background(), "BTCUSDT",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 2.0, candles[0].Close)
	assert.Equal(t, 3.0, candles[1].Close)

	_, err = src.Candles(context.Background(), "ETHUSDT", time.Time{}, time.Now())
	assert.ErrorIs(t, err, ErrMarketDataUnavailable)
}

func TestLoadCandleFile_Missing(t *testing.T) {
	_, err := LoadCandleFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
