package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

var (
	ErrMissingTimestamp = errors.New("missing or unparseable timestamp")
	ErrInvalidSide      = errors.New("missing or unrecognized side")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrInvalidQuantity  = errors.New("executed quantity must be positive")
	ErrInvalidFee       = errors.New("fee must not be negative")
	ErrMissingReason    = errors.New("reason must be populated")
)

// RowError describes why a row could not become a CanonicalTrade.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// CanonicalTrade is the normalized unit of work. Instances are built only by
// NewCanonicalTrade.
type CanonicalTrade struct {
	Row              int       `json:"row"`
	Timestamp        time.Time `json:"timestamp"`
	Pair             string    `json:"pair"`
	Side             Side      `json:"side"`
	Price            float64   `json:"price"`
	ExecutedQuantity float64   `json:"executedQuantity"`
	Amount           float64   `json:"amount"`
	Fee              float64   `json:"fee"`
	Reason           string    `json:"reason"`
	EstimatedFields  []string  `json:"estimatedFields"`
	HasMissingData   bool      `json:"hasMissingData"`
}

var recommendedFields = map[string]bool{
	EstimatedExecuted: true,
	EstimatedAmount:   true,
	EstimatedFee:      true,
	EstimatedReason:   true,
}

// NewCanonicalTrade validates a draft and converts it. A zero amount is
// derived from price and quantity.
func NewCanonicalTrade(d TradeDraft) (CanonicalTrade, error) {
	row := d.Row()
	if d.Timestamp.IsZero() {
		return CanonicalTrade{}, &RowError{Row: row, Field: FieldTimestamp, Err: ErrMissingTimestamp}
	}
	if !d.Side.Valid() {
		return CanonicalTrade{}, &RowError{Row: row, Field: FieldSide, Err: ErrInvalidSide}
	}
	if !(d.Price > 0) || math.IsInf(d.Price, 0) {
		return CanonicalTrade{}, &RowError{Row: row, Field: FieldPrice, Err: ErrInvalidPrice}
	}
	if !(d.Executed > 0) || math.IsInf(d.Executed, 0) {
		return CanonicalTrade{}, &RowError{Row: row, Field: FieldExecuted, Err: ErrInvalidQuantity}
	}
	if d.Fee < 0 || math.IsNaN(d.Fee) {
		return CanonicalTrade{}, &RowError{Row: row, Field: FieldFee, Err: ErrInvalidFee}
	}
	if d.Reason == "" {
		return CanonicalTrade{}, &RowError{Row: row, Field: FieldReason, Err: ErrMissingReason}
	}

	amount := d.Amount
	if amount == 0 {
		amount = d.Price * d.Executed
	}

	t := CanonicalTrade{
		Row:              row,
		Timestamp:        d.Timestamp.UTC(),
		Pair:             d.Pair,
		Side:             d.Side,
		Price:            d.Price,
		ExecutedQuantity: d.Executed,
		Amount:           amount,
		Fee:              d.Fee,
		Reason:           d.Reason,
		EstimatedFields:  append([]string{}, d.EstimatedFields...),
	}
	t.HasMissingData = hasRecommendedEstimate(t.EstimatedFields)
	return t, nil
}

func hasRecommendedEstimate(fields []string) bool {
	for _, f := range fields {
		if recommendedFields[f] {
			return true
		}
	}
	return false
}
