package processors

import (
	"math"
	"sort"

	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/utils"
)

// quantityEpsilon is the size below which a lot or sell remainder counts as
// fully consumed.
const quantityEpsilon = 1e-6

type openLot struct {
	trade     models.CanonicalTrade
	remaining float64
}

// LedgerMatcher pairs sells with open buy lots. FIFO reads lots from the head
// of the queue and LIFO from the tail; the algorithm is otherwise the same.
type LedgerMatcher struct {
	method models.Method
}

func NewLedgerMatcher(method models.Method) *LedgerMatcher {
	if method != models.MethodLIFO {
		method = models.MethodFIFO
	}
	return &LedgerMatcher{method: method}
}

func (m *LedgerMatcher) Method() models.Method { return m.method }

// Match processes the trades of a single pair. The input slice is not modified.
func (m *LedgerMatcher) Match(trades []models.CanonicalTrade) models.LedgerResult {
	sorted := append([]models.CanonicalTrade(nil), trades...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	result := models.LedgerResult{
		Matched:   []models.MatchedTrade{},
		Unmatched: []models.UnmatchedResidue{},
	}
	var queue []*openLot

	for _, tx := range sorted {
		if tx.Side == models.SideBuy {
			queue = append(queue, &openLot{trade: tx, remaining: tx.ExecutedQuantity})
			continue
		}

		sellRemaining := tx.ExecutedQuantity
		for sellRemaining > quantityEpsilon && len(queue) > 0 {
			idx := 0
			if m.method == models.MethodLIFO {
				idx = len(queue) - 1
			}
			lot := queue[idx]
			qty := math.Min(lot.remaining, sellRemaining)

			result.Matched = append(result.Matched, buildMatch(lot.trade, tx, qty))

			lot.remaining -= qty
			sellRemaining -= qty

			if lot.remaining <= quantityEpsilon {
				if m.method == models.MethodLIFO {
					queue = queue[:len(queue)-1]
				} else {
					queue = queue[1:]
				}
			}
		}

		if sellRemaining > quantityEpsilon {
			result.Unmatched = append(result.Unmatched, models.UnmatchedResidue{Trade: tx, RemainingQty: sellRemaining})
		}
	}

	for _, lot := range queue {
		if lot.remaining > quantityEpsilon {
			result.Unmatched = append(result.Unmatched, models.UnmatchedResidue{Trade: lot.trade, RemainingQty: lot.remaining})
		}
	}
	return result
}

func buildMatch(buy, sell models.CanonicalTrade, qty float64) models.MatchedTrade {
	feeShare := buy.Fee*qty/buy.ExecutedQuantity + sell.Fee*qty/sell.ExecutedQuantity
	pnl := (sell.Price-buy.Price)*qty - feeShare
	pnlPct := (sell.Price - buy.Price) / buy.Price * 100

	holdDays := math.Max(0, sell.Timestamp.Sub(buy.Timestamp).Hours()/24)
	apr := 0.0
	if holdDays > 0 {
		apr = (math.Pow(1+pnl/(buy.Price*qty), 365/holdDays) - 1) * 100
		if math.IsNaN(apr) || math.IsInf(apr, 0) {
			apr = 0
		}
	}

	return models.MatchedTrade{
		Pair:                    buy.Pair,
		BuyRow:                  buy.Row,
		SellRow:                 sell.Row,
		BuyTimestamp:            buy.Timestamp,
		SellTimestamp:           sell.Timestamp,
		BuyPrice:                buy.Price,
		SellPrice:               sell.Price,
		BuyFee:                  buy.Fee,
		SellFee:                 sell.Fee,
		BuyReason:               buy.Reason,
		SellReason:              sell.Reason,
		ExecutedQty:             qty,
		PnL:                     utils.RoundFloat(pnl, 2),
		PnLPercentage:           utils.RoundFloat(pnlPct, 2),
		HoldDays:                utils.RoundFloat(holdDays, 1),
		AnnualizedReturnPercent: utils.RoundFloat(apr, 2),
		EstimatedFields:         models.AppendUnique(append([]string{}, buy.EstimatedFields...), sell.EstimatedFields...),
		HasMissingData:          buy.HasMissingData || sell.HasMissingData,
	}
}

// GroupByPair splits trades per pair, keeping first-seen pair order.
func GroupByPair(trades []models.CanonicalTrade) ([]string, map[string][]models.CanonicalTrade) {
	var order []string
	groups := make(map[string][]models.CanonicalTrade)
	for _, t := range trades {
		if _, ok := groups[t.Pair]; !ok {
			order = append(order, t.Pair)
		}
		groups[t.Pair] = append(groups[t.Pair], t)
	}
	return order, groups
}

// MatchAll runs the matcher once per pair and concatenates the results.
func (m *LedgerMatcher) MatchAll(trades []models.CanonicalTrade) models.LedgerResult {
	out := models.LedgerResult{Matched: []models.MatchedTrade{}, Unmatched: []models.UnmatchedResidue{}}
	order, groups := GroupByPair(trades)
	for _, pair := range order {
		r := m.Match(groups[pair])
		out.Matched = append(out.Matched, r.Matched...)
		out.Unmatched = append(out.Unmatched, r.Unmatched...)
	}
	return out
}
