package processors

import (
	"fmt"

	"github.com/username/tradelens/src/models"
)

// PriceHistory is the running record of resolved prices in row order. It is a
// value: Append returns a new history and leaves the receiver untouched.
type PriceHistory struct {
	last  float64
	count int
}

func (h PriceHistory) Append(price float64) PriceHistory {
	if price <= 0 {
		return h
	}
	return PriceHistory{last: price, count: h.count + 1}
}

// Last returns the most recent price, if any.
func (h PriceHistory) Last() (float64, bool) {
	return h.last, h.count > 0
}

func (h PriceHistory) Len() int { return h.count }

type FieldImputer struct {
	feeRate          float64
	fallbackQuantity float64
}

// NewFieldImputer builds an imputer. A fallbackQuantity of 0 disables the
// quantity fallback, leaving unresolvable quantities to be rejected.
func NewFieldImputer(feeRate, fallbackQuantity float64) *FieldImputer {
	return &FieldImputer{feeRate: feeRate, fallbackQuantity: fallbackQuantity}
}

// Impute fills price, executed quantity, amount and fee in that order, naming
// every filled field in EstimatedFields.
func (im *FieldImputer) Impute(d models.TradeDraft, history PriceHistory) (models.TradeDraft, PriceHistory) {
	d.EstimatedFields = append([]string(nil), d.EstimatedFields...)

	if d.Price == 0 {
		if last, ok := history.Last(); ok {
			d.Price = last
			d.MarkEstimated(models.EstimatedPrice)
		} else if d.Amount != 0 && d.Executed != 0 {
			d.Price = d.Amount / d.Executed
			d.MarkEstimated(models.EstimatedPrice)
		}
	}

	if d.Executed == 0 {
		if d.Amount != 0 && d.Price != 0 {
			d.Executed = d.Amount / d.Price
			d.MarkEstimated(models.EstimatedExecuted)
		} else if im.fallbackQuantity > 0 {
			d.Executed = im.fallbackQuantity
			d.MarkEstimated(models.EstimatedExecuted)
		}
	}

	if d.Amount == 0 && d.Price != 0 && d.Executed != 0 {
		d.Amount = d.Price * d.Executed
		d.MarkEstimated(models.EstimatedAmount)
	}

	if d.IsMissing(models.FieldFee) && d.Amount != 0 {
		d.Fee = d.Amount * im.feeRate
		d.MarkEstimated(models.EstimatedFee)
	}

	return d, history.Append(d.Price)
}

// EstimationDiagnostic reports the fields filled for one row, or nil when
// nothing was estimated.
func EstimationDiagnostic(d models.TradeDraft) *models.Diagnostic {
	if len(d.EstimatedFields) == 0 {
		return nil
	}
	return &models.Diagnostic{
		Row:      d.Row(),
		Severity: models.SeverityInfo,
		Code:     models.CodeFieldEstimated,
		Message:  fmt.Sprintf("estimated fields: %v", d.EstimatedFields),
	}
}
