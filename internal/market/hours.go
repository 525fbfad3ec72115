package market

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// endDateLayouts are the ISO-8601 shapes accepted for endDate. All of them
// require a zone; naive timestamps are rejected.
var endDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
}

// ParseEndDate parses an ISO-8601 date-time carrying a "Z" or numeric offset.
func ParseEndDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// HoursToClose returns the signed number of hours from now until endDate,
// rounded to two decimals. It returns nil when endDate is empty or cannot be
// parsed. Negative values mean the market is already past its close.
func HoursToClose(endDate string, now time.Time) *float64 {
	end, ok := ParseEndDate(endDate)
	if !ok {
		return nil
	}

	// Split into whole seconds and nanoseconds so far-off dates do not
	// saturate time.Duration.
	secs := end.Unix() - now.Unix()
	nanos := end.Nanosecond() - now.Nanosecond()
	hours := decimal.NewFromInt(secs).
		Add(decimal.New(int64(nanos), -9)).
		Div(decimal.NewFromInt(3600)).
		Round(2)

	h, _ := hours.Float64()
	return &h
}
