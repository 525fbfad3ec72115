package market

import (
	"strings"
	"testing"

	"github.com/alanyoungcy/marketfocus/internal/domain"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantLen int
		want    DecodeStatus
	}{
		{name: "absent", input: nil, want: DecodeMissing},
		{name: "native list", input: []any{"Yes", "No"}, wantLen: 2, want: DecodeOK},
		{name: "string slice", input: []string{"a", "b", "c"}, wantLen: 3, want: DecodeOK},
		{name: "json string", input: `["Yes", "No"]`, wantLen: 2, want: DecodeOK},
		{name: "empty json array", input: `[]`, wantLen: 0, want: DecodeOK},
		{name: "invalid json", input: `[invalid`, want: DecodeInvalid},
		{name: "empty string", input: "", want: DecodeInvalid},
		{name: "json null", input: "null", want: DecodeInvalid},
		{name: "json object", input: `{"a":1}`, want: DecodeInvalid},
		{name: "trailing data", input: `["a"] ["b"]`, want: DecodeInvalid},
		{name: "number", input: 42.0, want: DecodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, st := DecodeList(tt.input)
			if st != tt.want {
				t.Fatalf("DecodeList() status = %v, want %v", st, tt.want)
			}
			if len(got) != tt.wantLen {
				t.Errorf("DecodeList() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestDecodeList_KeepsLargeTokenIDs(t *testing.T) {
	const id = "83955612885151370769947492812886282601680164705864046042194488203730621200472"
	got, st := DecodeList("[" + id + ", 1]")
	if st != DecodeOK {
		t.Fatalf("status = %v, want ok", st)
	}
	s, err := tokenID(got[0])
	if err != nil {
		t.Fatalf("tokenID: %v", err)
	}
	if s != id {
		t.Errorf("token id = %s, want %s", s, id)
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		name       string
		raw        domain.RawMarket
		wantYes    float64
		wantNo     float64
		wantYesTok string
		wantNoTok  string
		wantReason string
	}{
		{
			name: "json encoded strings",
			raw: domain.RawMarket{
				"outcomes":      `["Yes","No"]`,
				"outcomePrices": `["0.65","0.35"]`,
				"clobTokenIds":  `["T1","T2"]`,
			},
			wantYes: 0.65, wantNo: 0.35, wantYesTok: "T1", wantNoTok: "T2",
		},
		{
			name: "native lists",
			raw: domain.RawMarket{
				"outcomes":      []any{"Yes", "No"},
				"outcomePrices": []any{"0.65", "0.35"},
				"clobTokenIds":  []any{"T1", "T2"},
			},
			wantYes: 0.65, wantNo: 0.35, wantYesTok: "T1", wantNoTok: "T2",
		},
		{
			name: "reversed labels",
			raw: domain.RawMarket{
				"outcomes":      []any{"no", "YES"},
				"outcomePrices": []any{0.2, 0.8},
				"clobTokenIds":  []any{"N", "Y"},
			},
			wantYes: 0.8, wantNo: 0.2, wantYesTok: "Y", wantNoTok: "N",
		},
		{
			name: "condition id fallback",
			raw: domain.RawMarket{
				"outcomes":      `["Yes","No"]`,
				"outcomePrices": `["0.5","0.5"]`,
				"conditionId":   "0xabc",
			},
			wantYes: 0.5, wantNo: 0.5, wantYesTok: "0xabc", wantNoTok: "0xabc",
		},
		{
			name: "missing outcomes",
			raw: domain.RawMarket{
				"outcomePrices": `["0.5","0.5"]`,
				"clobTokenIds":  `["T1","T2"]`,
			},
			wantReason: ReasonNotBinary,
		},
		{
			name: "missing tokens and condition id",
			raw: domain.RawMarket{
				"outcomes":      `["Yes","No"]`,
				"outcomePrices": `["0.5","0.5"]`,
				"conditionId":   "",
			},
			wantReason: ReasonNotBinary,
		},
		{
			name: "three outcomes",
			raw: domain.RawMarket{
				"outcomes":      `["A","B","C"]`,
				"outcomePrices": `["0.2","0.3","0.5"]`,
				"clobTokenIds":  `["T1","T2","T3"]`,
			},
			wantReason: ReasonNotBinary,
		},
		{
			name: "non yes/no labels",
			raw: domain.RawMarket{
				"outcomes":      `["Up","Down"]`,
				"outcomePrices": `["0.5","0.5"]`,
				"clobTokenIds":  `["T1","T2"]`,
			},
			wantReason: ReasonNotBinary,
		},
		{
			name: "unparseable price",
			raw: domain.RawMarket{
				"outcomes":      `["Yes","No"]`,
				"outcomePrices": `["abc","0.5"]`,
				"clobTokenIds":  `["T1","T2"]`,
			},
			wantReason: "invalid price: could not convert prices",
		},
		{
			name: "nan price",
			raw: domain.RawMarket{
				"outcomes":      `["Yes","No"]`,
				"outcomePrices": `["NaN","0.4"]`,
				"clobTokenIds":  `["T1","T2"]`,
			},
			wantReason: "invalid price:",
		},
		{
			name: "infinite price",
			raw: domain.RawMarket{
				"outcomes":      []any{"Yes", "No"},
				"outcomePrices": []any{"0.6", "-Infinity"},
				"clobTokenIds":  []any{"T1", "T2"},
			},
			wantReason: "invalid price:",
		},
		{
			name: "null price",
			raw: domain.RawMarket{
				"outcomes":      []any{"Yes", "No"},
				"outcomePrices": []any{"0.5", nil},
				"clobTokenIds":  []any{"T1", "T2"},
			},
			wantReason: "invalid price:",
		},
		{
			name: "object token id",
			raw: domain.RawMarket{
				"outcomes":      []any{"Yes", "No"},
				"outcomePrices": []any{"0.5", "0.5"},
				"clobTokenIds":  []any{map[string]any{}, "T2"},
			},
			wantReason: "invalid token id:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseYesNo(tt.raw)

			if tt.wantReason != "" {
				if !strings.HasPrefix(got.InvalidReason, tt.wantReason) {
					t.Fatalf("InvalidReason = %q, want prefix %q", got.InvalidReason, tt.wantReason)
				}
				if got.YesPrice != nil || got.NoPrice != nil || got.YesTokenID != "" || got.NoTokenID != "" {
					t.Errorf("invalid outcome carries values: %+v", got)
				}
				return
			}

			if got.InvalidReason != "" {
				t.Fatalf("InvalidReason = %q, want empty", got.InvalidReason)
			}
			if got.YesPrice == nil || *got.YesPrice != tt.wantYes {
				t.Errorf("YesPrice = %v, want %v", got.YesPrice, tt.wantYes)
			}
			if got.NoPrice == nil || *got.NoPrice != tt.wantNo {
				t.Errorf("NoPrice = %v, want %v", got.NoPrice, tt.wantNo)
			}
			if got.YesTokenID != tt.wantYesTok || got.NoTokenID != tt.wantNoTok {
				t.Errorf("tokens = (%q, %q), want (%q, %q)", got.YesTokenID, got.NoTokenID, tt.wantYesTok, tt.wantNoTok)
			}
		})
	}
}

func TestParseYesNo_NonBinaryLengths(t *testing.T) {
	for _, outcomes := range []string{`[]`, `["Yes"]`, `["Yes","No","Maybe"]`, `["a","b","c","d"]`} {
		got := ParseYesNo(domain.RawMarket{
			"outcomes":      outcomes,
			"outcomePrices": `["0.5","0.5"]`,
			"clobTokenIds":  `["T1","T2"]`,
		})
		if got.InvalidReason != ReasonNotBinary {
			t.Errorf("outcomes %s: InvalidReason = %q, want %q", outcomes, got.InvalidReason, ReasonNotBinary)
		}
		if got.YesPrice != nil || got.NoPrice != nil || got.YesTokenID != "" || got.NoTokenID != "" {
			t.Errorf("outcomes %s: values not cleared: %+v", outcomes, got)
		}
	}
}

func TestParseYesNo_DecodeIssueKeepsFirstError(t *testing.T) {
	got := ParseYesNo(domain.RawMarket{
		"outcomes":      `[broken`,
		"outcomePrices": `[also broken`,
	})
	if got.InvalidReason != ReasonNotBinary {
		t.Fatalf("InvalidReason = %q", got.InvalidReason)
	}
	if got.DecodeIssue != ReasonInvalidOutcomes {
		t.Errorf("DecodeIssue = %q, want %q", got.DecodeIssue, ReasonInvalidOutcomes)
	}
}
