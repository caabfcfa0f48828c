package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	amountRegex      = regexp.MustCompile(`[.,]?\d[\d.,]*`)
	commaGroupsRegex = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	dotGroupsRegex   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// ParsePrice extracts the first amount from s, ignoring currency symbols. Both
// "1,234.56" and "1.234,56" are understood; a separator is only taken as a
// thousands separator when it splits exact groups of three digits. It returns
// 0 when no amount is present or the separators are ambiguous.
func ParsePrice(s string) float64 {
	match := strings.TrimRight(amountRegex.FindString(s), ".,")
	if match == "" {
		return 0
	}
	normalized, ok := normalizeAmount(match)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// normalizeAmount rewrites a digit run with separators into ParseFloat form.
func normalizeAmount(a string) (string, bool) {
	lastComma := strings.LastIndex(a, ",")
	lastDot := strings.LastIndex(a, ".")

	switch {
	case lastComma < 0 && lastDot < 0:
		return a, true

	case lastComma >= 0 && lastDot >= 0:
		// The rightmost separator is the decimal mark.
		decimal, group, groups := lastDot, ",", commaGroupsRegex
		if lastComma > lastDot {
			decimal, group, groups = lastComma, ".", dotGroupsRegex
		}
		intPart, frac := a[:decimal], a[decimal+1:]
		if !groups.MatchString(intPart) {
			return "", false
		}
		return strings.ReplaceAll(intPart, group, "") + "." + frac, true

	default:
		sep, groups := ",", commaGroupsRegex
		if lastDot >= 0 {
			sep, groups = ".", dotGroupsRegex
		}
		switch n := strings.Count(a, sep); {
		case n == 1 && sep == "," && groups.MatchString(a):
			return strings.ReplaceAll(a, sep, ""), true
		case n == 1:
			return strings.Replace(a, sep, ".", 1), true
		case groups.MatchString(a):
			return strings.ReplaceAll(a, sep, ""), true
		default:
			return "", false
		}
	}
}

// RoundCents rounds f to two decimal places.
func RoundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
