package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/metrics"
	"golang.org/x/oauth2"
)

type analysisRequest struct {
	Content string `json:"content"`
}

type analysisResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

type analysisClientImpl struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
}

// NewAnalysisClient builds a client for the analysis endpoint. A non-empty
// apiKey is sent as a bearer token.
func NewAnalysisClient(endpoint, apiKey string, timeout time.Duration) AnalysisClient {
	client := &http.Client{}
	if apiKey != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: apiKey,
			TokenType:   "Bearer",
		}))
	}
	return &analysisClientImpl{httpClient: client, endpoint: endpoint, timeout: timeout}
}

func (c *analysisClientImpl) Analyze(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(analysisRequest{Content: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrAnalysisFailed, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var out analysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrAnalysisFailed, err)
	}
	if strings.TrimSpace(out.Result) == "" {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrAnalysisFailed, out.Error)
		}
		return "", fmt.Errorf("%w: empty result", ErrAnalysisFailed)
	}
	return StripMarkdown(out.Result), nil
}

type analysisServiceImpl struct {
	client  AnalysisClient
	uploads UploadService
	metrics *metrics.Recorder
}

func NewAnalysisService(client AnalysisClient, uploads UploadService, recorder *metrics.Recorder) AnalysisService {
	return &analysisServiceImpl{client: client, uploads: uploads, metrics: recorder}
}

// AnalyzeSession builds the trade prompt from a cached result and returns the
// service's review. The cached result is never modified.
func (s *analysisServiceImpl) AnalyzeSession(ctx context.Context, sessionID string, userID int64) (string, error) {
	result, err := s.uploads.GetResult(sessionID, userID)
	if err != nil {
		return "", err
	}

	log := logger.FromContext(ctx)
	prompt := BuildTradePrompt(result)
	log.Debug("Requesting trade analysis", "sessionID", sessionID, "promptLength", len(prompt))

	text, err := s.client.Analyze(ctx, prompt)
	if err != nil {
		s.metrics.AnalysisRequests.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error("Trade analysis failed", "sessionID", sessionID, "error", err)
		return "", err
	}
	s.metrics.AnalysisRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return text, nil
}
