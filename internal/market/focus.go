package market

import (
	"strings"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

var (
	cryptoKeywords = []string{"crypto", "bitcoin", "ethereum", "btc", "eth", "cryptocurrency"}
	sportsKeywords = []string{"sport", "football", "basketball", "soccer", "tennis", "baseball", "hockey", "nfl"}
)

// PickFocus selects the first crypto market and the first sports market from
// candidates, in that order. A record that matches both keyword sets only
// takes the first empty slot (crypto is checked first). Unfilled slots are
// omitted.
func PickFocus(candidates []domain.MarketRecord) []domain.MarketRecord {
	var crypto, sports *domain.MarketRecord

	for i := range candidates {
		m := &candidates[i]
		category := strings.ToLower(m.Category)
		question := strings.ToLower(m.Question)

		switch {
		case crypto == nil && matchesAny(category, question, cryptoKeywords):
			crypto = m
		case sports == nil && matchesAny(category, question, sportsKeywords):
			sports = m
		}

		if crypto != nil && sports != nil {
			break
		}
	}

	out := make([]domain.MarketRecord, 0, 2)
	if crypto != nil {
		out = append(out, *crypto)
	}
	if sports != nil {
		out = append(out, *sports)
	}
	return out
}

func matchesAny(category, question string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(category, kw) || strings.Contains(question, kw) {
			return true
		}
	}
	return false
}
