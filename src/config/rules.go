package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisRules holds the thresholds used by the auditing, inference and
// classification stages. Values missing from the YAML file keep their defaults.
type AnalysisRules struct {
	Quality struct {
		IQRMultiplier        float64 `yaml:"iqr_multiplier"`
		MinObservations      int     `yaml:"min_observations"`
		MaxPrice             float64 `yaml:"max_price"`
		MaxFee               float64 `yaml:"max_fee"`
		MarketDeviationPct   float64 `yaml:"market_deviation_pct"`
		AmountTolerancePct   float64 `yaml:"amount_tolerance_pct"`
		GapSigma             float64 `yaml:"gap_sigma"`
		MinGapsForGapAnomaly int     `yaml:"min_gaps_for_gap_anomaly"`
	} `yaml:"quality"`
	Imputation struct {
		FeeRate float64 `yaml:"fee_rate"`
	} `yaml:"imputation"`
	Reason struct {
		LookbackTrades   int     `yaml:"lookback_trades"`
		SimilarPricePct  float64 `yaml:"similar_price_pct"`
		MinSimilarTrades int     `yaml:"min_similar_trades"`
		MarketMovePct    float64 `yaml:"market_move_pct"`
	} `yaml:"reason"`
	Mistakes struct {
		FOMOWindowDays     int     `yaml:"fomo_window_days"`
		FOMONearHighPct    float64 `yaml:"fomo_near_high_pct"`
		RSIPeriod          int     `yaml:"rsi_period"`
		VolumePeriod       int     `yaml:"volume_period"`
		RSIOverbought      float64 `yaml:"rsi_overbought"`
		RSIOversold        float64 `yaml:"rsi_oversold"`
		VolumeSpikeMult    float64 `yaml:"volume_spike_mult"`
		VolumeDryMult      float64 `yaml:"volume_dry_mult"`
		EntryNearClosePct  float64 `yaml:"entry_near_close_pct"`
		ShortTermHoldHours float64 `yaml:"short_term_hold_hours"`
	} `yaml:"mistakes"`
}

// DefaultRules returns the thresholds the pipeline was calibrated with.
func DefaultRules() *AnalysisRules {
	r := &AnalysisRules{}
	r.Quality.IQRMultiplier = 1.5
	r.Quality.MinObservations = 5
	r.Quality.MaxPrice = 1_000_000
	r.Quality.MaxFee = 1_000
	r.Quality.MarketDeviationPct = 10
	r.Quality.AmountTolerancePct = 1
	r.Quality.GapSigma = 3
	r.Quality.MinGapsForGapAnomaly = 6
	r.Imputation.FeeRate = 0.002
	r.Reason.LookbackTrades = 5
	r.Reason.SimilarPricePct = 2
	r.Reason.MinSimilarTrades = 2
	r.Reason.MarketMovePct = 3
	r.Mistakes.FOMOWindowDays = 7
	r.Mistakes.FOMONearHighPct = 5
	r.Mistakes.RSIPeriod = 14
	r.Mistakes.VolumePeriod = 20
	r.Mistakes.RSIOverbought = 70
	r.Mistakes.RSIOversold = 30
	r.Mistakes.VolumeSpikeMult = 1.5
	r.Mistakes.VolumeDryMult = 0.8
	r.Mistakes.EntryNearClosePct = 2
	r.Mistakes.ShortTermHoldHours = 24
	return r
}

func (r *AnalysisRules) Validate() error {
	if r.Quality.IQRMultiplier <= 0 {
		return fmt.Errorf("quality.iqr_multiplier must be positive, got %.2f", r.Quality.IQRMultiplier)
	}
	if r.Quality.MinObservations < 1 {
		return errors.New("quality.min_observations must be at least 1")
	}
	if r.Imputation.FeeRate < 0 || r.Imputation.FeeRate >= 1 {
		return fmt.Errorf("imputation.fee_rate must be in [0,1), got %.4f", r.Imputation.FeeRate)
	}
	if r.Reason.LookbackTrades < 3 {
		return fmt.Errorf("reason.lookback_trades must be at least 3, got %d", r.Reason.LookbackTrades)
	}
	if r.Mistakes.RSIPeriod < 2 || r.Mistakes.VolumePeriod < 1 {
		return fmt.Errorf("mistakes.rsi_period (%d) and mistakes.volume_period (%d) are too small",
			r.Mistakes.RSIPeriod, r.Mistakes.VolumePeriod)
	}
	if r.Mistakes.RSIOversold >= r.Mistakes.RSIOverbought {
		return fmt.Errorf("mistakes.rsi_oversold (%.1f) must be below rsi_overbought (%.1f)",
			r.Mistakes.RSIOversold, r.Mistakes.RSIOverbought)
	}
	return nil
}

// LoadRules reads the rules file at path. A missing file is not an error:
// the defaults are returned instead.
func LoadRules(path string) (*AnalysisRules, error) {
	rules := DefaultRules()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Rules file %s not found, using default analysis rules", path)
			return rules, nil
		}
		return nil, fmt.Errorf("failed to read rules file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(b, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file '%s': %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}
	return rules, nil
}
