package market

import (
	"time"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// NewRecord assembles a MarketRecord from a raw listing. now anchors the
// hours-to-close computation.
func NewRecord(raw domain.RawMarket, now time.Time) domain.MarketRecord {
	out := ParseYesNo(raw)
	endDate := stringValue(raw["endDate"])

	return domain.MarketRecord{
		ID:              stringValue(raw["id"]),
		Slug:            stringValue(raw["slug"]),
		Question:        stringValue(raw["question"]),
		Category:        stringValue(raw["category"]),
		EndDate:         endDate,
		HoursToClose:    HoursToClose(endDate, now),
		EnableOrderBook: truthy(raw["enableOrderBook"]),
		Active:          truthy(raw["active"]),
		Closed:          truthy(raw["closed"]),
		YesTokenID:      out.YesTokenID,
		NoTokenID:       out.NoTokenID,
		YesPrice:        out.YesPrice,
		NoPrice:         out.NoPrice,
		InvalidReason:   out.InvalidReason,
		DecodeIssue:     out.DecodeIssue,
		ClobTokenIDs:    out.TokenIDs,
	}
}

// NewRecords builds one record per raw listing, preserving order. A bad
// listing yields a record with InvalidReason set; it never drops the batch.
func NewRecords(raws []domain.RawMarket, now time.Time) []domain.MarketRecord {
	out := make([]domain.MarketRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NewRecord(raw, now))
	}
	return out
}
