package models

import "time"

// Canonical field names produced by the row normalizer.
const (
	FieldTimestamp = "timestamp"
	FieldPair      = "pair"
	FieldSide      = "side"
	FieldPrice     = "price"
	FieldExecuted  = "executed"
	FieldAmount    = "amount"
	FieldFee       = "fee"
	FieldReason    = "reason"
)

// Names recorded in EstimatedFields.
const (
	EstimatedPrice           = "Price"
	EstimatedExecuted        = "Executed"
	EstimatedAmount          = "Amount"
	EstimatedFee             = "Fee"
	EstimatedReason          = "Reason"
	EstimatedAmountCorrected = "Amount(corrected)"
	EstimatedReasonCorrected = "Reason(corrected)"
)

// RawRow is one data row of an uploaded sheet, keyed by the header text
// exactly as it appeared in the file.
type RawRow map[string]string

// NormalizedRow carries canonical field names with canonical side and pair
// values. Index is the 0-based position of the row in the upload.
type NormalizedRow struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

// Get returns the trimmed value of a canonical field.
func (r NormalizedRow) Get(field string) string {
	return r.Fields[field]
}

// TradeDraft is the partially typed form of a row while it moves through
// imputation and inference. Zero numeric values mean "not supplied".
type TradeDraft struct {
	Index           int
	Timestamp       time.Time
	TimestampRaw    string
	Pair            string
	Side            Side
	SideRaw         string
	Price           float64
	Executed        float64
	Amount          float64
	Fee             float64
	Reason          string
	Missing         map[string]bool
	EstimatedFields []string
}

// Row is the 1-based row number used in user-facing logs.
func (d TradeDraft) Row() int { return d.Index + 1 }

// IsMissing reports whether the canonical field was absent from the source.
func (d TradeDraft) IsMissing(field string) bool { return d.Missing[field] }

// MarkEstimated appends name to EstimatedFields unless already present.
func (d *TradeDraft) MarkEstimated(name string) {
	d.EstimatedFields = AppendUnique(d.EstimatedFields, name)
}

// AppendUnique appends the names not already in dst, keeping order.
func AppendUnique(dst []string, names ...string) []string {
	for _, n := range names {
		found := false
		for _, existing := range dst {
			if existing == n {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, n)
		}
	}
	return dst
}
