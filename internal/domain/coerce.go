package domain

import (
	"math"
	"strconv"
	"strings"
)

// CoercedValue is the outcome of parsing a raw ResultMeasureValue.
// When Rejected is true, Value is meaningless and the record must be excluded.
type CoercedValue struct {
	Value    float64
	Rejected bool
}

// naTokens are cell contents treated as missing. These are the common NA
// spellings found in spreadsheet and dataframe exports of WQP tables.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingValue reports whether a raw cell should be treated as absent.
func IsMissingValue(raw string) bool {
	_, ok := naTokens[raw]
	return ok
}

// CoerceValue parses a raw measurement string. Surrounding whitespace is
// ignored. Unparsable text and non-finite numbers are rejected.
func CoerceValue(raw string) CoercedValue {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return CoercedValue{Rejected: true}
	}
	return CoercedValue{Value: v}
}
