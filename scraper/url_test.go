package scraper

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("  https://www.chemistwarehouse.com.au/buy/123/panadol  ")
	if err != nil || got != "https://www.chemistwarehouse.com.au/buy/123/panadol" {
		t.Errorf("got %q, %v", got, err)
	}

	for _, bad := range []string{"", "ftp://host/x", "www.example.com/p", "https://", "http://[::1"} {
		if _, err := NormalizeURL(bad); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("NormalizeURL(%q) err = %v", bad, err)
		}
	}
}
