package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/tradelens/src/models"
)

const largeHourlyLoss = -1000.0

// BuildTradePrompt renders the numeric summary of a session as plain text for
// the analysis service.
func BuildTradePrompt(r *models.AnalysisResult) string {
	s := r.Summary
	var b strings.Builder

	shortRatio, swingRatio := 0.0, 0.0
	if s.TotalTrades > 0 {
		shortRatio = float64(s.ShortTermCount) / float64(s.TotalTrades) * 100
		swingRatio = float64(s.LongTermCount) / float64(s.TotalTrades) * 100
	}

	b.WriteString("[Trading summary]\n")
	fmt.Fprintf(&b, "- Total trades: %d\n", s.TotalTrades)
	fmt.Fprintf(&b, "- Average holding period: %.1f days\n", s.AvgHoldDays)
	fmt.Fprintf(&b, "- Win rate: %.2f%%\n", s.WinRate)
	fmt.Fprintf(&b, "- Largest profit: %.2f USDT\n", s.MaxProfit)
	fmt.Fprintf(&b, "- Largest loss: %.2f USDT\n", s.MaxLoss)
	fmt.Fprintf(&b, "- Final PnL: %.2f USDT\n", s.FinalPnL)
	fmt.Fprintf(&b, "- Short-term trades (24h or less): %.1f%%\n", shortRatio)
	fmt.Fprintf(&b, "- Swing trades (over 24h): %.1f%%\n", swingRatio)

	var counts [24]int
	var hourlyPnL [24]float64
	for _, m := range r.Matched {
		h := m.SellTimestamp.UTC().Hour()
		counts[h]++
		hourlyPnL[h] += m.PnL
	}

	b.WriteString("\n[Trades by hour (UTC)]\n")
	if len(r.Matched) == 0 {
		b.WriteString("No data\n")
	} else {
		parts := make([]string, 24)
		for h := range counts {
			parts[h] = fmt.Sprintf("%dh: %d", h, counts[h])
		}
		b.WriteString(strings.Join(parts, ", ") + "\n")
	}

	b.WriteString("\n[Hours with large losses]\n")
	lossLines := 0
	for h, pnl := range hourlyPnL {
		if pnl < largeHourlyLoss {
			fmt.Fprintf(&b, "%dh: %.2f USDT\n", h, pnl)
			lossLines++
		}
	}
	if lossLines == 0 {
		b.WriteString("No large losses\n")
	}

	b.WriteString("\n[Round trips by pair]\n")
	if len(r.Matched) == 0 {
		b.WriteString("No data\n")
	}
	byPair := append([]models.MatchedTrade(nil), r.Matched...)
	sort.SliceStable(byPair, func(i, j int) bool { return byPair[i].Pair < byPair[j].Pair })
	var inefficient []string
	for _, m := range byPair {
		held := holdingLabel(m)
		fmt.Fprintf(&b, "%s (held %s, buy %.2f, sell %.2f, pnl %.2f)\n", m.Pair, held, m.BuyPrice, m.SellPrice, m.PnL)
		if m.HoldDuration().Hours() > 24 && m.PnL < 0 {
			inefficient = append(inefficient, fmt.Sprintf("%s: held %s, lost %.2f USDT", m.Pair, held, -m.PnL))
		}
	}

	b.WriteString("\n[Inefficient trades (long hold ending in a loss)]\n")
	if len(inefficient) == 0 {
		b.WriteString("None\n")
	} else {
		b.WriteString(strings.Join(inefficient, "\n") + "\n")
	}

	b.WriteString("\n[Behavioral flags]\n")
	if s.Mistakes.TotalMistakes == 0 {
		b.WriteString("None\n")
	} else {
		types := make([]string, 0, len(s.Mistakes.Counts))
		for t := range s.Mistakes.Counts {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(&b, "- %s: %d\n", t, s.Mistakes.Counts[models.MistakeType(t)])
		}
		fmt.Fprintf(&b, "- Impulsive trade ratio: %.2f\n", s.Mistakes.ImpulsiveRatio)
	}

	b.WriteString(`
[Instructions]
Write plain text only, with no markdown such as headings or bold markers.
Separate paragraphs with line breaks and keep the sentences short and conversational.
Point out concrete patterns and problems backed by the numbers above rather than general advice.
Structure the answer in exactly this order:
Insights:
Problems:
Suggestions:`)
	return b.String()
}

func holdingLabel(m models.MatchedTrade) string {
	d := m.HoldDuration()
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
	return fmt.Sprintf("%.1f days", m.HoldDays)
}
