package market

import "github.com/alanyoungcy/marketfocus/internal/domain"

// MaxHoursToClose is the inclusive upper bound of the candidate window.
const MaxHoursToClose = 48.0

// IsCandidate reports whether a record is worth trading: order book enabled,
// open, closing within (0, MaxHoursToClose] hours, and with both token ids.
func IsCandidate(r domain.MarketRecord) bool {
	if !r.EnableOrderBook {
		return false
	}
	if !r.Active || r.Closed {
		return false
	}
	if r.HoursToClose == nil {
		return false
	}
	if h := *r.HoursToClose; h <= 0 || h > MaxHoursToClose {
		return false
	}
	if r.YesTokenID == "" || r.NoTokenID == "" {
		return false
	}
	return true
}

// Candidates returns the records that pass IsCandidate, in input order.
func Candidates(records []domain.MarketRecord) []domain.MarketRecord {
	out := make([]domain.MarketRecord, 0, len(records))
	for _, r := range records {
		if IsCandidate(r) {
			out = append(out, r)
		}
	}
	return out
}

// WithPrices drops records missing either side's price.
func WithPrices(records []domain.MarketRecord) []domain.MarketRecord {
	out := make([]domain.MarketRecord, 0, len(records))
	for _, r := range records {
		if r.HasPrices() {
			out = append(out, r)
		}
	}
	return out
}
