package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/username/tradelens/src/models"
)

var (
	ErrParsingFailed         = errors.New("failed to parse trade file")
	ErrProcessingFailed      = errors.New("failed to process trades")
	ErrSessionNotFound       = errors.New("analysis session not found or expired")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrAnalysisFailed        = errors.New("trade analysis request failed")
)

// UploadRequest carries one uploaded file and the options chosen for it.
type UploadRequest struct {
	File        io.Reader
	FileName    string
	ContentType string // detected from the file content
	UserID      int64
	Method      models.Method
	Symbol      string
	MarketData  bool
}

// UploadService defines the interface for the core upload processing logic.
type UploadService interface {
	ProcessUpload(ctx context.Context, req UploadRequest) (*models.AnalysisResult, error)
	GetResult(sessionID string, userID int64) (*models.AnalysisResult, error)
}

// CandleSource supplies daily OHLCV candles, ascending by time.
type CandleSource interface {
	Candles(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error)
}

// AnalysisClient sends a prompt to the external analysis service.
type AnalysisClient interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AnalysisService produces the narrative review of a cached session.
type AnalysisService interface {
	AnalyzeSession(ctx context.Context, sessionID string, userID int64) (string, error)
}
