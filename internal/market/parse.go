package market

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

// Invalid reasons reported by ParseYesNo.
const (
	ReasonMissingOutcomes      = "missing outcomes"
	ReasonInvalidOutcomes      = "invalid outcomes JSON"
	ReasonMissingOutcomePrices = "missing outcomePrices"
	ReasonInvalidOutcomePrices = "invalid outcomePrices JSON"
	ReasonMissingTokenIDs      = "missing clobTokenIds and conditionId"
	ReasonInvalidTokenIDs      = "invalid clobTokenIds JSON"
	ReasonNotBinary            = "not binary YES/NO"
)

// Outcome is the result of parsing a market's YES/NO sides.
type Outcome struct {
	YesPrice   *float64
	NoPrice    *float64
	YesTokenID string
	NoTokenID  string
	// TokenIDs is the decoded token list, set only on success.
	TokenIDs []string

	// InvalidReason is empty on success. When set, every value field above
	// is zero.
	InvalidReason string
	// DecodeIssue keeps the first field-level decode failure. Such failures
	// always surface as ReasonNotBinary; this says which field caused it.
	DecodeIssue string
}

// ParseYesNo extracts YES/NO prices and token ids from a raw listing without
// ever failing: problems are reported through Outcome.InvalidReason.
//
// clobTokenIds falls back to a duplicated conditionId because markets
// without an order book only expose the condition id.
func ParseYesNo(raw domain.RawMarket) Outcome {
	var issue string
	note := func(reason string) {
		if issue == "" {
			issue = reason
		}
	}

	outcomes, st := DecodeList(raw["outcomes"])
	switch st {
	case DecodeMissing:
		note(ReasonMissingOutcomes)
	case DecodeInvalid:
		note(ReasonInvalidOutcomes)
	}

	prices, st := DecodeList(raw["outcomePrices"])
	switch st {
	case DecodeMissing:
		note(ReasonMissingOutcomePrices)
	case DecodeInvalid:
		note(ReasonInvalidOutcomePrices)
	}

	tokens, st := DecodeList(raw["clobTokenIds"])
	switch st {
	case DecodeMissing:
		if cid := stringValue(raw["conditionId"]); cid != "" {
			tokens = []any{cid, cid}
		} else {
			note(ReasonMissingTokenIDs)
		}
	case DecodeInvalid:
		note(ReasonInvalidTokenIDs)
	}

	if len(outcomes) != 2 || len(prices) != 2 || len(tokens) != 2 {
		return Outcome{InvalidReason: ReasonNotBinary, DecodeIssue: issue}
	}

	yesIdx, ok := yesIndex(outcomes)
	if !ok {
		return Outcome{InvalidReason: ReasonNotBinary, DecodeIssue: issue}
	}
	noIdx := 1 - yesIdx

	// A side without a usable price cannot be traded, so a price failure
	// clears the token ids as well.
	yesPrice, err := parsePrice(prices[yesIdx])
	if err != nil {
		return Outcome{InvalidReason: invalidPrice(prices)}
	}
	noPrice, err := parsePrice(prices[noIdx])
	if err != nil {
		return Outcome{InvalidReason: invalidPrice(prices)}
	}

	yesToken, err := tokenID(tokens[yesIdx])
	if err != nil {
		return Outcome{InvalidReason: "invalid token id: " + err.Error()}
	}
	noToken, err := tokenID(tokens[noIdx])
	if err != nil {
		return Outcome{InvalidReason: "invalid token id: " + err.Error()}
	}

	ids := []string{"", ""}
	ids[yesIdx] = yesToken
	ids[noIdx] = noToken

	return Outcome{
		YesPrice:   &yesPrice,
		NoPrice:    &noPrice,
		YesTokenID: yesToken,
		NoTokenID:  noToken,
		TokenIDs:   ids,
	}
}

// yesIndex returns the index of the "yes" label when the pair is exactly one
// "yes" and one "no", compared case-insensitively.
func yesIndex(outcomes []any) (int, bool) {
	a, okA := outcomes[0].(string)
	b, okB := outcomes[1].(string)
	if !okA || !okB {
		return 0, false
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == "yes" && b == "no":
		return 0, true
	case a == "no" && b == "yes":
		return 1, true
	default:
		return 0, false
	}
}

func invalidPrice(prices []any) string {
	return fmt.Sprintf("invalid price: could not convert prices %v", prices)
}
