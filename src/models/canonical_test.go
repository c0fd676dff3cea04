package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() TradeDraft {
	return TradeDraft{
		Index:     2,
		Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Pair:      "BTC/USDT",
		Side:      SideBuy,
		Price:     50000,
		Executed:  0.5,
		Fee:       5,
		Reason:    "Breakout",
	}
}

func TestNewCanonicalTrade(t *testing.T) {
	d := validDraft()
	d.EstimatedFields = []string{EstimatedPrice}

	trade, err := NewCanonicalTrade(d)
	require.NoError(t, err)
	assert.Equal(t, 3, trade.Row)
	assert.Equal(t, 25000.0, trade.Amount, "zero amount is derived from price and quantity")
	assert.False(t, trade.HasMissingData, "an estimated price is a required field, not a recommended one")

	d.EstimatedFields = append(d.EstimatedFields, EstimatedFee)
	trade, err = NewCanonicalTrade(d)
	require.NoError(t, err)
	assert.True(t, trade.HasMissingData)
}

func TestNewCanonicalTrade_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TradeDraft)
		want   error
		field  string
	}{
		{"zero timestamp", func(d *TradeDraft) { d.Timestamp = time.Time{} }, ErrMissingTimestamp, FieldTimestamp},
		{"unknown side", func(d *TradeDraft) { d.Side = "HOLD" }, ErrInvalidSide, FieldSide},
		{"zero price", func(d *TradeDraft) { d.Price = 0 }, ErrInvalidPrice, FieldPrice},
		{"negative quantity", func(d *TradeDraft) { d.Executed = -1 }, ErrInvalidQuantity, FieldExecuted},
		{"negative fee", func(d *TradeDraft) { d.Fee = -0.1 }, ErrInvalidFee, FieldFee},
		{"empty reason", func(d *TradeDraft) { d.Reason = "" }, ErrMissingReason, FieldReason},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			_, err := NewCanonicalTrade(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 3, rowErr.Row)
			assert.Equal(t, tt.field, rowErr.Field)
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" lifo ")
	require.NoError(t, err)
	assert.Equal(t, MethodLIFO, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodFIFO, m)

	_, err = ParseMethod("HIFO")
	assert.Error(t, err)
}
