// Package market turns raw Gamma listings into normalized MarketRecords and
// applies the candidate and focus selection rules on top of them.
package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// DecodeStatus classifies the outcome of DecodeList.
type DecodeStatus int

const (
	DecodeOK DecodeStatus = iota
	// DecodeMissing means the field was absent or JSON null.
	DecodeMissing
	// DecodeInvalid means the field was present but not a list and not a
	// string holding a JSON array.
	DecodeInvalid
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeOK:
		return "ok"
	case DecodeMissing:
		return "missing"
	case DecodeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// DecodeList normalizes one of the list-or-JSON-string fields the Gamma API
// uses for outcomes, outcomePrices and clobTokenIds. Strings are parsed as a
// JSON array with numbers kept as json.Number so 77-digit token ids do not
// lose precision.
func DecodeList(v any) ([]any, DecodeStatus) {
	switch t := v.(type) {
	case nil:
		return nil, DecodeMissing
	case []any:
		return t, DecodeOK
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, DecodeOK
	case string:
		list, err := decodeJSONArray(t)
		if err != nil {
			return nil, DecodeInvalid
		}
		return list, DecodeOK
	default:
		return nil, DecodeInvalid
	}
}

func decodeJSONArray(s string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var list []any
	if err := dec.Decode(&list); err != nil {
		return nil, err
	}
	// "null" decodes into a nil slice without error.
	if list == nil {
		return nil, errors.New("not an array")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after array")
	}
	return list, nil
}

// stringValue renders scalar identity fields. Numbers are formatted without
// exponent; anything that is not a scalar yields "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// truthy mirrors how the upstream flags are interpreted: booleans as is,
// non-zero numbers, and strings other than "", "false" and "0".
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		return s != "" && s != "false" && s != "0"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}

// errNonFinite rejects NaN and infinities, which ParseFloat accepts but JSON
// cannot encode.
var errNonFinite = errors.New("non-finite price")

func parsePrice(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(t.String(), 64)
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("unsupported price type %T", v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNonFinite
	}
	return f, nil
}

func tokenID(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number, float64, int, int64:
		return stringValue(t), nil
	default:
		return "", fmt.Errorf("unsupported token id type %T", v)
	}
}
