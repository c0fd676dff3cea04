package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/metrics"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/parsers"
	"github.com/username/tradelens/src/processors"
)

const (
	ckSession = "session_%s"

	// Candle history fetched before the first trade, enough for the trailing
	// indicator windows.
	candleLookback = 30 * 24 * time.Hour

	// Upper bound on per-pair candle requests for one upload.
	maxCandlePairs = 10
)

type uploadServiceImpl struct {
	rowProcessor processors.RowProcessor
	newMatcher   processors.MatcherFactory
	classifier   processors.BehaviorClassifier
	candleSource CandleSource
	rules        *config.AnalysisRules
	resultCache  *cache.Cache
	metrics      *metrics.Recorder
	defaultPair  string
	sessionTTL   time.Duration
}

// NewUploadService wires the pipeline. candleSource may be nil, in which case
// market context is never requested.
func NewUploadService(
	rowProcessor processors.RowProcessor,
	newMatcher processors.MatcherFactory,
	classifier processors.BehaviorClassifier,
	candleSource CandleSource,
	rules *config.AnalysisRules,
	resultCache *cache.Cache,
	recorder *metrics.Recorder,
	defaultPair string,
	sessionTTL time.Duration,
) UploadService {
	return &uploadServiceImpl{
		rowProcessor: rowProcessor,
		newMatcher:   newMatcher,
		classifier:   classifier,
		candleSource: candleSource,
		rules:        rules,
		resultCache:  resultCache,
		metrics:      recorder,
		defaultPair:  defaultPair,
		sessionTTL:   sessionTTL,
	}
}

func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, req UploadRequest) (*models.AnalysisResult, error) {
	overallStartTime := time.Now()
	log := logger.FromContext(ctx)
	log.Info("ProcessUpload START", "userID", req.UserID, "file", req.FileName, "method", req.Method)

	format, err := parsers.DetectFormat(req.FileName, req.ContentType)
	if err != nil {
		s.metrics.UploadsProcessed.WithLabelValues(metrics.OutcomeParseError).Inc()
		return nil, err
	}
	parser, err := parsers.GetParser(format)
	if err != nil {
		s.metrics.UploadsProcessed.WithLabelValues(metrics.OutcomeParseError).Inc()
		return nil, err
	}
	rows, err := parser.Parse(req.File)
	if err != nil {
		s.metrics.UploadsProcessed.WithLabelValues(metrics.OutcomeParseError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	log.Debug("Parsed upload", "userID", req.UserID, "format", format, "rowCount", len(rows))

	method, err := models.ParseMethod(string(req.Method))
	if err != nil {
		s.metrics.UploadsProcessed.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	pair := processors.PairFromSymbol(req.Symbol, s.defaultPair)

	var diagnostics []models.Diagnostic
	var candles models.CandleSet
	if req.MarketData && s.candleSource != nil {
		candles, diagnostics = s.loadCandles(ctx, rows, pair)
	}

	out := s.rowProcessor.Process(rows, pair, candles)
	s.metrics.RowsRejected.Add(float64(len(out.Rejections)))

	result := &models.AnalysisResult{
		SessionID:   uuid.NewString(),
		UserID:      req.UserID,
		FileName:    req.FileName,
		Method:      method,
		CreatedAt:   time.Now().UTC(),
		Trades:      out.Trades,
		Matched:     []models.MatchedTrade{},
		Unmatched:   []models.UnmatchedResidue{},
		Rejections:  out.Rejections,
		Diagnostics: append(diagnostics, out.Diagnostics...),
		Mistakes:    []models.MistakeRecord{},
		Markers:     []models.MarketMarker{},
	}

	if len(out.Trades) == 0 {
		result.NoValidData = true
		result.Summary = processors.BuildSummary(nil, processors.Summarize(nil, 0), s.shortTermHold())
		s.store(result)
		s.metrics.UploadsProcessed.WithLabelValues(metrics.OutcomeNoValidData).Inc()
		log.Warn("Upload contained no valid trades", "userID", req.UserID, "rejected", len(out.Rejections))
		return result, nil
	}

	ledger := s.newMatcher(method).MatchAll(out.Trades)
	result.Matched = ledger.Matched
	result.Unmatched = ledger.Unmatched
	result.Mistakes = s.classifier.Classify(ledger.Matched, candles)
	result.Markers = s.classifier.OversoldMarkers(candles)
	result.Summary = processors.BuildSummary(
		ledger.Matched,
		processors.Summarize(result.Mistakes, len(ledger.Matched)),
		s.shortTermHold(),
	)

	s.store(result)
	s.metrics.MatchedTrades.Add(float64(len(ledger.Matched)))
	s.metrics.UploadsProcessed.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.metrics.PipelineDuration.Observe(time.Since(overallStartTime).Seconds())

	log.Info("ProcessUpload END",
		"userID", req.UserID,
		"sessionID", result.SessionID,
		"trades", len(result.Trades),
		"matched", len(result.Matched),
		"unmatched", len(result.Unmatched),
		"rejected", len(result.Rejections),
		"duration", time.Since(overallStartTime))
	return result, nil
}

// GetResult returns a cached result owned by userID.
func (s *uploadServiceImpl) GetResult(sessionID string, userID int64) (*models.AnalysisResult, error) {
	cached, found := s.resultCache.Get(fmt.Sprintf(ckSession, sessionID))
	if !found {
		logger.L.Debug("Cache miss for session", "sessionID", sessionID, "userID", userID)
		return nil, ErrSessionNotFound
	}
	result := cached.(*models.AnalysisResult)
	if result.UserID != userID {
		logger.L.Warn("Session requested by a different user", "sessionID", sessionID, "userID", userID)
		return nil, ErrSessionNotFound
	}
	return result, nil
}

func (s *uploadServiceImpl) store(result *models.AnalysisResult) {
	s.resultCache.Set(fmt.Sprintf(ckSession, result.SessionID), result, s.sessionTTL)
}

// loadCandles fetches one series per pair traded in rows. A pair whose fetch
// fails is left out of the set and reported as a diagnostic.
func (s *uploadServiceImpl) loadCandles(ctx context.Context, rows []models.RawRow, defaultPair string) (models.CandleSet, []models.Diagnostic) {
	start, end, ok := processors.TradeTimeRange(rows)
	if !ok {
		return nil, nil
	}
	log := logger.FromContext(ctx)
	candles := models.CandleSet{}
	var diags []models.Diagnostic

	pairs := processors.TradePairs(rows, defaultPair)
	if len(pairs) > maxCandlePairs {
		log.Warn("Too many pairs for market data", "pairs", len(pairs), "limit", maxCandlePairs)
		diags = append(diags, models.Diagnostic{
			Severity: models.SeverityWarning,
			Code:     models.CodeMarketDataUnavailable,
			Message:  fmt.Sprintf("%v: market data loaded for the first %d of %d pairs", ErrMarketDataUnavailable, maxCandlePairs, len(pairs)),
		})
		pairs = pairs[:maxCandlePairs]
	}

	for _, pair := range pairs {
		symbol := models.PairKey(pair)
		series, err := s.candleSource.Candles(ctx, symbol, start.Add(-candleLookback), end.Add(24*time.Hour))
		if err != nil {
			s.metrics.MarketDataFailures.Inc()
			log.Warn("Continuing without market data", "symbol", symbol, "error", err)
			msg := err.Error()
			if !errors.Is(err, ErrMarketDataUnavailable) {
				msg = fmt.Sprintf("%v for %s: %v", ErrMarketDataUnavailable, symbol, err)
			}
			diags = append(diags, models.Diagnostic{
				Severity: models.SeverityWarning,
				Code:     models.CodeMarketDataUnavailable,
				Message:  msg,
			})
			continue
		}
		candles.Put(pair, series)
	}
	return candles, diags
}

func (s *uploadServiceImpl) shortTermHold() time.Duration {
	return time.Duration(s.rules.Mistakes.ShortTermHoldHours * float64(time.Hour))
}
