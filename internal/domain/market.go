package domain

// RawMarket is a single listing as returned by the Gamma /markets endpoint.
// It is decoded loosely because upstream field shapes are inconsistent: list
// fields may arrive as JSON arrays or as JSON-encoded strings, and any field
// may be missing.
type RawMarket map[string]any

// MarketRecord is the normalized view of a RawMarket built once per fetch
// cycle. Empty strings stand in for null token ids and reasons; nil pointers
// for null prices and hours.
type MarketRecord struct {
	ID       string `json:"id"`
	Slug     string `json:"slug,omitempty"`
	Question string `json:"question,omitempty"`
	Category string `json:"category,omitempty"`

	EndDate      string   `json:"endDate,omitempty"`
	HoursToClose *float64 `json:"hours_to_close"`

	EnableOrderBook bool `json:"enableOrderBook"`
	Active          bool `json:"active"`
	Closed          bool `json:"closed"`

	YesTokenID string   `json:"yes_token_id,omitempty"`
	NoTokenID  string   `json:"no_token_id,omitempty"`
	YesPrice   *float64 `json:"yes_price"`
	NoPrice    *float64 `json:"no_price"`

	// InvalidReason is set when no clean binary YES/NO market could be
	// established. The price and token fields are all empty whenever it is.
	InvalidReason string `json:"invalid_reason,omitempty"`
	// DecodeIssue names the first field that failed to decode, when that is
	// what made the record invalid.
	DecodeIssue string `json:"decode_issue,omitempty"`

	ClobTokenIDs []string `json:"clob_token_ids,omitempty"`
}

// Valid reports whether the record parsed as a clean binary YES/NO market.
func (r MarketRecord) Valid() bool {
	return r.InvalidReason == ""
}

// HasPrices reports whether both sides carry a price.
func (r MarketRecord) HasPrices() bool {
	return r.YesPrice != nil && r.NoPrice != nil
}

// DisplayID returns the slug when present, falling back to the market id.
func (r MarketRecord) DisplayID() string {
	if r.Slug != "" {
		return r.Slug
	}
	return r.ID
}
