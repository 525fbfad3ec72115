package polymarket

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so responses
// work whether a flag is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexNumber unmarshals a JSON string or number into its textual form. The
// CLOB quotes prices as strings but not consistently.
type flexNumber json.Number

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = flexNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = flexNumber(num)
	return nil
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// APIPriceLevel is one row of an order book side.
type APIPriceLevel struct {
	Price flexNumber `json:"price"`
	Size  flexNumber `json:"size"`
}

// APIOrderBook is the order book summary returned by /book and /books.
type APIOrderBook struct {
	Market         string          `json:"market"`
	AssetID        string          `json:"asset_id"`
	Timestamp      flexNumber      `json:"timestamp"`
	Hash           string          `json:"hash"`
	Bids           []APIPriceLevel `json:"bids"`
	Asks           []APIPriceLevel `json:"asks"`
	MinOrderSize   flexNumber      `json:"min_order_size"`
	TickSize       flexNumber      `json:"tick_size"`
	NegRisk        flexBool        `json:"neg_risk"`
	LastTradePrice flexNumber      `json:"last_trade_price"`
}

// BookParam is one entry of the POST /books request body.
type BookParam struct {
	TokenID string `json:"token_id"`
}

// APIMidpoint is the /midpoint response.
type APIMidpoint struct {
	Mid flexNumber `json:"mid"`
}

// APIPrice is the /price response.
type APIPrice struct {
	Price flexNumber `json:"price"`
}

// ToDomain converts the DTO to a domain.OrderBook.
func (b *APIOrderBook) ToDomain() domain.OrderBook {
	return domain.OrderBook{
		Market:         b.Market,
		AssetID:        b.AssetID,
		Timestamp:      string(b.Timestamp),
		Hash:           b.Hash,
		Bids:           levelsToDomain(b.Bids),
		Asks:           levelsToDomain(b.Asks),
		MinOrderSize:   string(b.MinOrderSize),
		TickSize:       string(b.TickSize),
		NegRisk:        bool(b.NegRisk),
		LastTradePrice: string(b.LastTradePrice),
	}
}

func levelsToDomain(levels []APIPriceLevel) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, domain.PriceLevel{Price: string(l.Price), Size: string(l.Size)})
	}
	return out
}
