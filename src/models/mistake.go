package models

import "time"

type MistakeType string

const (
	MistakePanicSell     MistakeType = "PANIC_SELL"
	MistakeFOMOBuy       MistakeType = "FOMO_BUY"
	MistakeMomentumChase MistakeType = "MOMENTUM_CHASE"
)

const MarkerOversoldLowActivity = "OVERSOLD_LOW_ACTIVITY"

// MistakeRecord flags a behavioral pattern on one matched trade or buy event.
// PnL is set only for sell-side records.
type MistakeRecord struct {
	Type        MistakeType        `json:"type"`
	Timestamp   time.Time          `json:"timestamp"`
	Price       float64            `json:"price"`
	PnL         *float64           `json:"pnl"`
	BuyRow      int                `json:"buyRow"`
	SellRow     int                `json:"sellRow,omitempty"`
	Evidence    map[string]float64 `json:"evidence"`
	Description string             `json:"description"`
}

// MarketMarker is a time-located alert computed over the candle series alone.
type MarketMarker struct {
	Type        string             `json:"type"`
	Symbol      string             `json:"symbol"`
	Time        time.Time          `json:"time"`
	Price       float64            `json:"price"`
	Evidence    map[string]float64 `json:"evidence"`
	Description string             `json:"description"`
}

type MistakeSummary struct {
	Counts         map[MistakeType]int             `json:"counts"`
	TotalMistakes  int                             `json:"totalMistakes"`
	ImpulsiveRatio float64                         `json:"impulsiveRatio"`
	Grouped        map[MistakeType][]MistakeRecord `json:"grouped"`
}
