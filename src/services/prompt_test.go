package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/tradelens/src/models"
)

func TestBuildTradePrompt(t *testing.T) {
	buy := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	result := &models.AnalysisResult{
		Matched: []models.MatchedTrade{
			{Pair: "BTC/USDT", BuyTimestamp: buy, SellTimestamp: buy.Add(5 * time.Hour), BuyPrice: 100, SellPrice: 110, PnL: 10},
			{Pair: "BTC/USDT", BuyTimestamp: buy, SellTimestamp: buy.Add(72 * time.Hour), BuyPrice: 50000, SellPrice: 48000, PnL: -2000, HoldDays: 3},
		},
		Summary: models.Summary{
			TotalTrades:    2,
			WinRate:        50,
			ShortTermCount: 1,
			LongTermCount:  1,
			Mistakes: models.MistakeSummary{
				Counts:        map[models.MistakeType]int{models.MistakePanicSell: 1},
				TotalMistakes: 1,
			},
		},
	}

	p := BuildTradePrompt(result)

	assert.Contains(t, p, "Short-term trades (24h or less): 50.0%")
	assert.Contains(t, p, "14h: 1")
	assert.Contains(t, p, "9h: -2000.00 USDT")
	assert.Contains(t, p, "BTC/USDT (held 5.0 hours, buy 100.00, sell 110.00, pnl 10.00)")
	assert.Contains(t, p, "BTC/USDT: held 3.0 days, lost 2000.00 USDT")
	assert.Contains(t, p, "PANIC_SELL: 1")
	assert.NotContains(t, p, "**")
}

func TestBuildTradePrompt_Empty(t *testing.T) {
	p := BuildTradePrompt(&models.AnalysisResult{})
	assert.Contains(t, p, "Total trades: 0")
	assert.Contains(t, p, "No large losses")
	assert.Contains(t, p, "[Inefficient trades (long hold ending in a loss)]\nNone")
}

func TestStripMarkdown(t *testing.T) {
	in := "## Insights\n**Win rate** is low. See [the docs](http://x) ![chart](a.png)\n" +
		"- item one\n* item two\n```text\ncode line\n```\n<b>bold</b> ~~old~~ and *soft* words with_under_scores"

	out := StripMarkdown(in)

	for _, gone := range []string{"##", "**", "](", "![", "```", "<b>", "~~", "- item", "* item", "*soft*"} {
		assert.NotContains(t, out, gone)
	}
	for _, kept := range []string{"Insights", "Win rate is low.", "the docs", "item one", "item two", "code line", "bold", "old", "soft", "with_under_scores"} {
		assert.Contains(t, out, kept)
	}
}
