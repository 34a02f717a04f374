// Package currency formats provider amounts, which arrive in the smallest
// currency unit (cents for most currencies).
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists currencies that have no minor unit.
var zeroDecimal = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KRW": "₩",
}

// MajorUnits converts a minor-unit amount to its major-unit decimal value.
func MajorUnits(amount int64, code string) decimal.Decimal {
	d := decimal.NewFromInt(amount)
	if _, ok := zeroDecimal[strings.ToUpper(code)]; ok {
		return d
	}
	return d.Shift(-2)
}

// Format renders a minor-unit amount as a display string, e.g. "$10.00" or
// "₩50000". Unknown currencies fall back to "<CODE> <amount>".
func Format(amount int64, code string) string {
	upper := strings.ToUpper(code)
	major := MajorUnits(amount, upper)

	places := int32(2)
	if _, ok := zeroDecimal[upper]; ok {
		places = 0
	}

	if sym, ok := symbols[upper]; ok {
		return sym + major.StringFixed(places)
	}
	return upper + " " + major.StringFixed(places)
}
