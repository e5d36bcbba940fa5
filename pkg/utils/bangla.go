package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"
)

// Bengali digits occupy U+09E6..U+09EF
const bengaliZero = '০'

var bnPrinter = message.NewPrinter(language.Bengali)

// NormalizeText trims and NFC-normalizes user facing text so that visually
// identical Bengali strings compare equal.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeDigits rewrites Bengali digits to their ASCII counterparts.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= bengaliZero && r <= bengaliZero+9 {
			return '0' + (r - bengaliZero)
		}
		return r
	}, s)
}

// ParseAmount parses a user entered amount. Bengali digits, grouping commas
// and the taka sign are accepted. Infinities and NaN are rejected.
func ParseAmount(s string) (float64, error) {
	cleaned := NormalizeDigits(NormalizeText(s))
	cleaned = strings.NewReplacer(",", "", "৳", "", " ", "").Replace(cleaned)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, fmt.Errorf("amount %q is not a finite number", s)
	}
	return n, nil
}

// FormatTaka renders an amount with Bengali numerals and grouping.
func FormatTaka(amount float64) string {
	return "৳" + bnPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}
