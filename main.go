package main

import (
	"context"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/handlers"
	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/metrics"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/processors"
	"github.com/username/tradelens/src/security"
	"github.com/username/tradelens/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(allowed []string) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedOrigins[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, If-None-Match, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "ETag, X-Request-ID")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// buildCandleSource prefers a local snapshot over the live feed. A nil source
// disables market context.
func buildCandleSource(cfg *config.AppConfig) services.CandleSource {
	if cfg.MarketDataFile != "" {
		src, err := services.LoadCandleFile(cfg.MarketDataFile)
		if err != nil {
			logger.L.Error("Failed to load candle file, market context disabled", "path", cfg.MarketDataFile, "error", err)
			return nil
		}
		logger.L.Info("Using candle snapshot file", "path", cfg.MarketDataFile)
		return src
	}
	if cfg.MarketDataEnabled {
		logger.L.Info("Using live candle feed", "baseURL", cfg.MarketDataBaseURL)
		return services.NewMarketDataService(cfg.MarketDataBaseURL, cfg.MarketDataTimeout)
	}
	return nil
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("TradeLens backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	rules, err := config.LoadRules(config.Cfg.RulesPath)
	if err != nil {
		logger.L.Error("Failed to load analysis rules", "path", config.Cfg.RulesPath, "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing session cache...", "ttl", config.Cfg.SessionTTL)
	resultCache := cache.New(config.Cfg.SessionTTL, config.Cfg.SessionCleanupInterval)
	recorder := metrics.NewRecorder()

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	uploadService := services.NewUploadService(
		processors.NewTradeProcessor(rules, config.Cfg.FallbackQuantity),
		processors.NewTradeMatcher,
		processors.NewMistakeClassifier(rules),
		buildCandleSource(config.Cfg),
		rules,
		resultCache,
		recorder,
		config.Cfg.DefaultPair,
		config.Cfg.SessionTTL,
	)
	analysisClient := services.NewAnalysisClient(config.Cfg.AnalysisServiceURL, config.Cfg.AnalysisAPIKey, config.Cfg.AnalysisTimeout)
	analysisService := services.NewAnalysisService(analysisClient, uploadService, recorder)

	uploadHandler := handlers.NewUploadHandler(uploadService, config.Cfg.MaxUploadSizeBytes, models.Method(config.Cfg.DefaultMatchMethod))
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	requireAuth := handlers.AuthMiddleware(authService)

	logger.L.Info("Configuring routes...")
	mux := http.NewServeMux()
	mux.Handle("POST /api/uploads", requireAuth(http.HandlerFunc(uploadHandler.HandleUpload)))
	mux.Handle("GET /api/uploads/{sessionID}", requireAuth(http.HandlerFunc(uploadHandler.HandleGetSession)))
	mux.Handle("POST /api/uploads/{sessionID}/analysis", requireAuth(http.HandlerFunc(analysisHandler.HandleAnalyze)))
	mux.Handle("GET /metrics", recorder.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "TradeLens backend is running"})
	})

	finalHandler := enableCORS(config.Cfg.AllowedOrigins)(rateLimitMiddleware(handlers.RequestLogger(mux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: config.Cfg.AnalysisTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
