package scraper

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in       string
		value    float64
		currency string
	}{
		{"$39.99", 39.99, "$"},
		{"  A$1,234.56 ", 1234.56, "A$"},
		{"1.234,56 €", 1234.56, "€"},
		{"€1 234,56", 1234.56, "€"},
		{"£1,234", 1234, "£"},
		{"12,5", 12.5, ""},
		{"49.99", 49.99, ""},
		{"0", 0, ""},
		{"AUD 15", 15, "AUD"},
		{"Now $8.00 each", 8, "$"},
		{"1,234,567", 1234567, ""},
	}
	lp := NewLocaleParser()
	for _, tt := range tests {
		v, cur, err := lp.ParsePrice(tt.in)
		if err != nil {
			t.Errorf("ParsePrice(%q): %v", tt.in, err)
			continue
		}
		if v != tt.value || cur != tt.currency {
			t.Errorf("ParsePrice(%q) = %v %q, want %v %q", tt.in, v, cur, tt.value, tt.currency)
		}
	}
}

func TestParsePriceRejectsText(t *testing.T) {
	lp := NewLocaleParser()
	if _, _, err := lp.ParsePrice("not_found"); err == nil {
		t.Error("expected an error")
	}
	if got := lp.ParseOrZero("Price unavailable"); got != 0 {
		t.Errorf("ParseOrZero = %v", got)
	}
}
