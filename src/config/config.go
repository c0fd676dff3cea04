package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	JWTSecret          string
	Port               string
	LogLevel           string
	MaxUploadSizeBytes int64
	AllowedOrigins     []string

	// Session cache for analysis results
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	// Ledger defaults
	DefaultPair        string
	DefaultMatchMethod string
	FallbackQuantity   float64 // 0 disables the executed-quantity fallback
	RulesPath          string

	// Candle feed
	MarketDataEnabled bool
	MarketDataBaseURL string
	MarketDataTimeout time.Duration
	MarketDataFile    string // JSON candle snapshot used instead of the live feed

	// External analysis endpoint
	AnalysisServiceURL string
	AnalysisAPIKey     string
	AnalysisTimeout    time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set. The auth service's signing secret must be shared with this service.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	method := strings.ToUpper(getEnv("DEFAULT_MATCH_METHOD", "FIFO"))
	if method != "FIFO" && method != "LIFO" {
		log.Printf("WARNING: Invalid DEFAULT_MATCH_METHOD '%s'. Using FIFO.", method)
		method = "FIFO"
	}

	Cfg = &AppConfig{
		JWTSecret:          jwtSecret,
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		SessionTTL:             getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 60*time.Minute),

		DefaultPair:        getEnv("DEFAULT_PAIR", "BTC/USDT"),
		DefaultMatchMethod: method,
		FallbackQuantity:   getEnvAsFloat("FALLBACK_QUANTITY", 0.1),
		RulesPath:          getEnv("RULES_PATH", "config/rules.yaml"),

		MarketDataEnabled: getEnvAsBool("MARKET_DATA_ENABLED", false),
		MarketDataBaseURL: getEnv("MARKET_DATA_BASE_URL", "https://api.binance.com"),
		MarketDataTimeout: getEnvAsDuration("MARKET_DATA_TIMEOUT", 20*time.Second),
		MarketDataFile:    getEnv("MARKET_DATA_FILE", ""),

		AnalysisServiceURL: getEnv("ANALYSIS_SERVICE_URL", "http://localhost:8001/gpt-analysis"),
		AnalysisAPIKey:     getEnv("ANALYSIS_API_KEY", ""),
		AnalysisTimeout:    getEnvAsDuration("ANALYSIS_TIMEOUT", 60*time.Second),
	}

	if Cfg.FallbackQuantity < 0 {
		log.Printf("WARNING: FALLBACK_QUANTITY must not be negative (%f). Disabling the fallback.", Cfg.FallbackQuantity)
		Cfg.FallbackQuantity = 0
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DefaultPair=%s, Method=%s, MarketData=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DefaultPair, Cfg.DefaultMatchMethod, Cfg.MarketDataEnabled)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
