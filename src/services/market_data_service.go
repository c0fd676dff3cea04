package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/models"
	"golang.org/x/net/publicsuffix"
)

const klinePageLimit = 1000

// marketDataServiceImpl reads daily klines from a Binance-compatible REST API.
type marketDataServiceImpl struct {
	httpClient *http.Client
	baseURL    string
	pageLimit  int
}

// NewMarketDataService creates a candle source backed by the exchange's kline
// endpoint. The client keeps cookies across pages like a browser session.
func NewMarketDataService(baseURL string, timeout time.Duration) CandleSource {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	return &marketDataServiceImpl{
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageLimit:  klinePageLimit,
	}
}

// Candles pages through [start, end]. Each page resumes one millisecond after
// the previous page's last close time.
func (s *marketDataServiceImpl) Candles(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	symbol = strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
	endMs := end.UnixMilli()
	next := start.UnixMilli()
	var candles []models.Candle

	for {
		page, err := s.fetchPage(ctx, symbol, next, endMs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
		}
		if len(page) == 0 {
			break
		}
		for _, k := range page {
			candles = append(candles, k.candle)
		}
		next = page[len(page)-1].closeTime + 1
		if len(page) < s.pageLimit || next >= endMs {
			break
		}
	}

	logger.L.Info("Fetched candles", "symbol", symbol, "count", len(candles), "start", start, "end", end)
	return candles, nil
}

type kline struct {
	candle    models.Candle
	closeTime int64
}

func (s *marketDataServiceImpl) fetchPage(ctx context.Context, symbol string, startMs, endMs int64) ([]kline, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1d")
	q.Set("startTime", strconv.FormatInt(startMs, 10))
	q.Set("endTime", strconv.FormatInt(endMs, 10))
	q.Set("limit", strconv.Itoa(s.pageLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call klines API for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("klines API returned non-OK status %d for %s. Body: %s", resp.StatusCode, symbol, string(bodyBytes))
	}

	var raw [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode klines response for %s: %w", symbol, err)
	}

	out := make([]kline, 0, len(raw))
	for i, row := range raw {
		k, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d for %s: %w", i, symbol, err)
		}
		out = append(out, k)
	}
	return out, nil
}

// parseKline reads [openTime, open, high, low, close, volume, closeTime, ...].
func parseKline(row []interface{}) (kline, error) {
	if len(row) < 7 {
		return kline{}, fmt.Errorf("expected at least 7 fields, got %d", len(row))
	}
	vals := make([]float64, 7)
	for i := 0; i < 7; i++ {
		v, err := klineNumber(row[i])
		if err != nil {
			return kline{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = v
	}
	return kline{
		candle: models.Candle{
			Time:   time.UnixMilli(int64(vals[0])).UTC(),
			Open:   vals[1],
			High:   vals[2],
			Low:    vals[3],
			Close:  vals[4],
			Volume: vals[5],
		},
		closeTime: int64(vals[6]),
	}, nil
}

func klineNumber(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected value %v", v)
	}
}
