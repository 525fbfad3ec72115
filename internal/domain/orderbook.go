package domain

import "strings"

// Side is the order side understood by the CLOB price endpoint.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes s to a Side. It reports false for anything other than
// BUY or SELL (case-insensitive).
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	default:
		return "", false
	}
}

// PriceLevel is a single price+size entry in an order book. Values are kept
// as the decimal strings the CLOB sends.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// OrderBook is an order book summary for one token.
type OrderBook struct {
	Market         string       `json:"market"`
	AssetID        string       `json:"asset_id"`
	Timestamp      string       `json:"timestamp,omitempty"`
	Hash           string       `json:"hash,omitempty"`
	Bids           []PriceLevel `json:"bids"`
	Asks           []PriceLevel `json:"asks"`
	MinOrderSize   string       `json:"min_order_size,omitempty"`
	TickSize       string       `json:"tick_size,omitempty"`
	NegRisk        bool         `json:"neg_risk"`
	LastTradePrice string       `json:"last_trade_price,omitempty"`
}

// BidAsk holds the best bid and ask for a token. Either may be nil when the
// lookup failed or the side has no liquidity.
type BidAsk struct {
	Bid *float64 `json:"bid"`
	Ask *float64 `json:"ask"`
}

// PriceRequest asks for the price of a token on one side.
type PriceRequest struct {
	TokenID string `json:"token_id"`
	Side    string `json:"side"`
}

// PriceResult answers a PriceRequest. Price is nil when the lookup failed.
type PriceResult struct {
	TokenID string   `json:"token_id"`
	Side    string   `json:"side"`
	Price   *float64 `json:"price"`
}
