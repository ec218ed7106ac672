package models

import (
	"strings"
	"time"
)

// Delimiter joins the two halves of a paired price line.
const Delimiter = " -!- "

// ZeroPrice stands in for any price field that could not be read.
const ZeroPrice = "0"

// NotFoundLine is printed when structured data exists but lists no prices.
const NotFoundLine = "not_found"

// RecordKind tells which shape a PriceRecord has.
type RecordKind int

const (
	// KindEmpty means no price container was ever located.
	KindEmpty RecordKind = iota
	// KindSingle is a lone headline price.
	KindSingle
	// KindPair is a (regular, discounted) pair.
	KindPair
	// KindNotFound means structured data was present with an empty prices list.
	KindNotFound
)

func (k RecordKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindPair:
		return "pair"
	case KindNotFound:
		return "not_found"
	default:
		return "empty"
	}
}

// OutputStyle selects how single and empty records are printed.
type OutputStyle string

const (
	// StylePaired always prints two values ("<price> -!- 0", "0 -!- 0").
	StylePaired OutputStyle = "paired"
	// StyleSingle prints a lone value ("<price>", "0").
	StyleSingle OutputStyle = "single"
)

// ParseOutputStyle maps a config string to a style, defaulting to paired.
func ParseOutputStyle(s string) OutputStyle {
	if strings.EqualFold(strings.TrimSpace(s), string(StyleSingle)) {
		return StyleSingle
	}
	return StylePaired
}

// PriceRecord is the single result of one extraction.
type PriceRecord struct {
	Kind       RecordKind `json:"kind"`
	Regular    string     `json:"regular,omitempty"`
	Discounted string     `json:"discounted,omitempty"`
}

// Pair builds a paired record. Blank halves become the zero sentinel.
func Pair(regular, discounted string) PriceRecord {
	return PriceRecord{
		Kind:       KindPair,
		Regular:    orZero(regular),
		Discounted: orZero(discounted),
	}
}

// Single builds a headline-only record. A blank price yields Empty.
func Single(price string) PriceRecord {
	price = strings.TrimSpace(price)
	if price == "" {
		return Empty()
	}
	return PriceRecord{Kind: KindSingle, Regular: price}
}

// Empty is the record for "nothing found on the page".
func Empty() PriceRecord {
	return PriceRecord{Kind: KindEmpty}
}

// NotFound is the record for structured data with no prices.
func NotFound() PriceRecord {
	return PriceRecord{Kind: KindNotFound}
}

// Format renders the record as the printed result line.
func (r PriceRecord) Format(style OutputStyle) string {
	switch r.Kind {
	case KindPair:
		return r.Regular + Delimiter + r.Discounted
	case KindSingle:
		if style == StyleSingle {
			return r.Regular
		}
		return r.Regular + Delimiter + ZeroPrice
	case KindNotFound:
		return NotFoundLine
	default:
		if style == StyleSingle {
			return ZeroPrice
		}
		return ZeroPrice + Delimiter + ZeroPrice
	}
}

// HasPrice reports whether the record carries at least one real price.
func (r PriceRecord) HasPrice() bool {
	switch r.Kind {
	case KindPair:
		return r.Regular != ZeroPrice || r.Discounted != ZeroPrice
	case KindSingle:
		return true
	default:
		return false
	}
}

func orZero(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ZeroPrice
	}
	return s
}

// Path names the extraction branch that produced a record.
type Path string

const (
	PathStructured       Path = "structured"
	PathDOMBasic         Path = "dom_basic"
	PathDOMWithDropdown  Path = "dom_with_dropdown"
	PathDOMWithSelection Path = "dom_with_selection"
	PathNotFound         Path = "not_found"
)

// Extraction is what the extractor hands back: the record and how it was reached.
type Extraction struct {
	Record PriceRecord `json:"record"`
	Path   Path        `json:"path"`
}

// Check is one completed extraction, as recorded by sinks.
type Check struct {
	URL       string        `json:"url"`
	Result    Extraction    `json:"result"`
	Line      string        `json:"line"`
	CheckedAt time.Time     `json:"checked_at"`
	Duration  time.Duration `json:"duration"`
}

// NewCheck stamps an extraction with its formatted line and timing.
func NewCheck(url string, result Extraction, style OutputStyle, started time.Time) Check {
	return Check{
		URL:       url,
		Result:    result,
		Line:      result.Record.Format(style),
		CheckedAt: started,
		Duration:  time.Since(started),
	}
}

// PriceHistory is a stored check read back from the database.
type PriceHistory struct {
	ID              int       `json:"id" db:"id"`
	URL             string    `json:"url" db:"url"`
	Kind            string    `json:"kind" db:"kind"`
	Path            string    `json:"path" db:"path"`
	Regular         string    `json:"regular" db:"regular"`
	Discounted      string    `json:"discounted" db:"discounted"`
	RegularValue    float64   `json:"regular_value" db:"regular_value"`
	DiscountedValue float64   `json:"discounted_value" db:"discounted_value"`
	Currency        string    `json:"currency" db:"currency"`
	Line            string    `json:"line" db:"line"`
	DurationMs      int64     `json:"duration_ms" db:"duration_ms"`
	CheckedAt       time.Time `json:"checked_at" db:"checked_at"`
}
