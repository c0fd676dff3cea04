package models

import (
	"fmt"
	"strings"
	"time"
)

// Method is the queue discipline used to pick the open lot a sell closes.
type Method string

const (
	MethodFIFO Method = "FIFO"
	MethodLIFO Method = "LIFO"
)

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodFIFO, "":
		return MethodFIFO, nil
	case MethodLIFO:
		return MethodLIFO, nil
	default:
		return "", fmt.Errorf("unknown matching method %q", s)
	}
}

// MatchedTrade pairs one buy slice with one sell slice. Buy* and Sell* fields
// are copies of the contributing rows; BuyRow and SellRow identify them.
type MatchedTrade struct {
	Pair                    string    `json:"pair"`
	BuyRow                  int       `json:"buyRow"`
	SellRow                 int       `json:"sellRow"`
	BuyTimestamp            time.Time `json:"buyTimestamp"`
	SellTimestamp           time.Time `json:"sellTimestamp"`
	BuyPrice                float64   `json:"buyPrice"`
	SellPrice               float64   `json:"sellPrice"`
	BuyFee                  float64   `json:"buyFee"`
	SellFee                 float64   `json:"sellFee"`
	BuyReason               string    `json:"buyReason"`
	SellReason              string    `json:"sellReason"`
	ExecutedQty             float64   `json:"executedQty"`
	PnL                     float64   `json:"pnl"`
	PnLPercentage           float64   `json:"pnlPercentage"`
	HoldDays                float64   `json:"holdDays"`
	AnnualizedReturnPercent float64   `json:"annualizedReturnPercent"`
	EstimatedFields         []string  `json:"estimatedFields"`
	HasMissingData          bool      `json:"hasMissingData"`
}

// HoldDuration is the exact time between the buy and the sell.
func (m MatchedTrade) HoldDuration() time.Duration {
	d := m.SellTimestamp.Sub(m.BuyTimestamp)
	if d < 0 {
		return 0
	}
	return d
}

// UnmatchedResidue is a row, or the unconsumed remainder of one, that found no
// counterparty.
type UnmatchedResidue struct {
	Trade        CanonicalTrade `json:"trade"`
	RemainingQty float64        `json:"remainingQty"`
}

// LedgerResult is the output of matching one pair.
type LedgerResult struct {
	Matched   []MatchedTrade     `json:"matched"`
	Unmatched []UnmatchedResidue `json:"unmatched"`
}
