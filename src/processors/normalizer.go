package processors

import (
	"regexp"
	"sort"
	"strings"

	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/utils"
)

// fieldAliases lists the accepted header spellings per canonical field, most
// specific first. When a row carries several aliases of one field, the
// earliest alias with a non-empty value wins.
var fieldAliases = map[string][]string{
	models.FieldTimestamp: {"timestamp", "datetime", "tradetime", "dateutc", "date", "time"},
	models.FieldPair:      {"pair", "symbol", "market"},
	models.FieldSide:      {"side", "direction"},
	models.FieldPrice:     {"price", "avgprice", "averageprice"},
	models.FieldExecuted:  {"executed", "executedqty", "quantity", "qty", "filled"},
	models.FieldAmount:    {"amount", "total", "notional", "quoteqty"},
	models.FieldFee:       {"fee", "commission"},
	models.FieldReason:    {"reason", "note", "memo"},
}

type alias struct {
	field string
	rank  int
}

var headerAliases = func() map[string]alias {
	m := make(map[string]alias)
	for field, names := range fieldAliases {
		for rank, name := range names {
			m[name] = alias{field: field, rank: rank}
		}
	}
	return m
}()

var (
	parenSuffix   = regexp.MustCompile(`\(.*?\)`)
	headerNoise   = regexp.MustCompile(`[\s_\-]+`)
	numericFields = []string{models.FieldPrice, models.FieldExecuted, models.FieldAmount, models.FieldFee}
)

// NormalizeHeader reduces a header to the key used in the synonym table,
// e.g. "Date(UTC)" -> "date" and "Executed_Qty" -> "executedqty".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = parenSuffix.ReplaceAllString(h, "")
	return headerNoise.ReplaceAllString(h, "")
}

// NormalizeSide maps free-form side text onto BUY or SELL. Unrecognized text
// is returned trimmed so the row can be rejected with its original value.
func NormalizeSide(s string) string {
	trimmed := strings.TrimSpace(s)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.Contains(upper, "BUY"), strings.Contains(upper, "LONG"):
		return string(models.SideBuy)
	case strings.Contains(upper, "SELL"), strings.Contains(upper, "SHORT"):
		return string(models.SideSell)
	}
	return trimmed
}

// NormalizePair folds the BTC/USDT spellings onto one symbol.
func NormalizePair(p string) string {
	trimmed := strings.TrimSpace(p)
	upper := strings.ToUpper(trimmed)
	if (strings.Contains(upper, "BTC") && strings.Contains(upper, "USDT")) || upper == "BTC" {
		return "BTC/USDT"
	}
	return trimmed
}

// PairFromSymbol turns an exchange symbol such as "ETHUSDT" or "eth" into
// "ETH/USDT". An empty symbol returns fallback.
func PairFromSymbol(symbol, fallback string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return fallback
	}
	base := strings.TrimSuffix(s, "USDT")
	if base == "" {
		return fallback
	}
	return base + "/USDT"
}

type RowNormalizer struct {
	defaultPair string
}

func NewRowNormalizer(defaultPair string) *RowNormalizer {
	if defaultPair == "" {
		defaultPair = "BTC/USDT"
	}
	return &RowNormalizer{defaultPair: defaultPair}
}

// Normalize maps raw headers onto canonical field names and canonicalizes side
// and pair values. Unknown columns are dropped. It never fails.
func (n *RowNormalizer) Normalize(rows []models.RawRow) []models.NormalizedRow {
	out := make([]models.NormalizedRow, 0, len(rows))
	for i, raw := range rows {
		headers := make([]string, 0, len(raw))
		for h := range raw {
			headers = append(headers, h)
		}
		sort.Strings(headers)

		fields := make(map[string]string)
		ranks := make(map[string]int)
		byAlias := make(map[string]string)
		for _, h := range headers {
			key := NormalizeHeader(h)
			a, ok := headerAliases[key]
			if !ok {
				continue
			}
			value := strings.TrimSpace(raw[h])
			if _, seen := byAlias[key]; !seen || byAlias[key] == "" {
				byAlias[key] = value
			}
			existing, seen := fields[a.field]
			switch {
			case !seen:
			case existing == "" && value != "":
			case value != "" && a.rank < ranks[a.field]:
			default:
				continue
			}
			fields[a.field] = value
			ranks[a.field] = a.rank
		}
		if ts := joinDateAndTime(byAlias["date"], byAlias["time"]); ts != "" && ranks[models.FieldTimestamp] >= headerAliases["date"].rank {
			fields[models.FieldTimestamp] = ts
		}
		if v, ok := fields[models.FieldSide]; ok {
			fields[models.FieldSide] = NormalizeSide(v)
		}
		if v, ok := fields[models.FieldPair]; ok {
			fields[models.FieldPair] = NormalizePair(v)
		}
		out = append(out, models.NormalizedRow{Index: i, Fields: fields})
	}
	return out
}

// joinDateAndTime combines separate date and time-of-day columns. It returns
// "" unless date has no clock part and clock looks like one.
func joinDateAndTime(date, clock string) string {
	if date == "" || strings.Contains(date, ":") || !strings.Contains(clock, ":") || strings.ContainsAny(clock, "/-") {
		return ""
	}
	return date + " " + clock
}

// ToDraft coerces a normalized row into typed fields. Blank or unparseable
// numbers are recorded as missing and left at zero.
func (n *RowNormalizer) ToDraft(row models.NormalizedRow) models.TradeDraft {
	d := models.TradeDraft{
		Index:        row.Index,
		TimestampRaw: row.Get(models.FieldTimestamp),
		SideRaw:      row.Get(models.FieldSide),
		Side:         models.Side(row.Get(models.FieldSide)),
		Pair:         row.Get(models.FieldPair),
		Reason:       row.Get(models.FieldReason),
		Missing:      make(map[string]bool),
	}
	if ts, ok := utils.ParseTradeTime(d.TimestampRaw); ok {
		d.Timestamp = ts
	} else {
		d.Missing[models.FieldTimestamp] = true
	}
	if d.Pair == "" {
		d.Pair = n.defaultPair
	}
	if d.Reason == "" {
		d.Missing[models.FieldReason] = true
	}

	for _, field := range numericFields {
		v, ok := utils.ParseCleanNumber(row.Get(field))
		if !ok {
			d.Missing[field] = true
			continue
		}
		switch field {
		case models.FieldPrice:
			d.Price = v
		case models.FieldExecuted:
			d.Executed = v
		case models.FieldAmount:
			d.Amount = v
		case models.FieldFee:
			d.Fee = v
		}
	}
	return d
}
