package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LocaleParser turns printed prices such as "$1,234.56", "A$39.99" or
// "1.234,56 €" into numbers. The result line is never rewritten with it;
// it only feeds sinks that store numeric fields.
type LocaleParser struct {
	currency *regexp.Regexp
	number   *regexp.Regexp
}

// NewLocaleParser creates a parser for dot- and comma-decimal locales.
func NewLocaleParser() *LocaleParser {
	return &LocaleParser{
		currency: regexp.MustCompile(`(?i)(A\$|NZ\$|US\$|\$|£|€|¥|₹|\b(?:AUD|NZD|USD|EUR|GBP|NPR)\b)`),
		number:   regexp.MustCompile(`[0-9][0-9.,\s\x{00a0}']*`),
	}
}

// ParsePrice returns the numeric value and currency marker of text.
// The currency is "" when the text carries none.
func (lp *LocaleParser) ParsePrice(text string) (float64, string, error) {
	text = strings.TrimSpace(text)
	raw := lp.number.FindString(text)
	if raw == "" {
		return 0, "", fmt.Errorf("no price in %q", text)
	}

	value, err := strconv.ParseFloat(normaliseNumber(raw), 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse price %q: %w", text, err)
	}
	return value, strings.ToUpper(lp.currency.FindString(text)), nil
}

// ParseOrZero is ParsePrice for sinks: unreadable text counts as 0.
func (lp *LocaleParser) ParseOrZero(text string) float64 {
	v, _, err := lp.ParsePrice(text)
	if err != nil {
		return 0
	}
	return v
}

// normaliseNumber rewrites a grouped number to Go float syntax. The last
// separator is the decimal mark when at most two digits follow it and it
// does not also appear earlier in the number.
func normaliseNumber(raw string) string {
	raw = strings.ReplaceAll(strings.Join(strings.Fields(raw), ""), "'", "")
	raw = strings.TrimRight(raw, ".,")

	last := strings.LastIndexAny(raw, ".,")
	if last < 0 {
		return raw
	}
	intPart, frac := raw[:last], raw[last+1:]
	sep := raw[last]

	decimal := len(frac) <= 2
	if len(frac) == 3 && !strings.ContainsAny(intPart, ".,") {
		// "1,234" and "1.234" are thousands; "0.125" is not.
		decimal = intPart == "0"
	}
	if strings.IndexByte(intPart, sep) >= 0 {
		// The same separator appearing twice is grouping.
		decimal = false
	}

	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	if !decimal {
		return intPart + frac
	}
	return intPart + "." + frac
}
