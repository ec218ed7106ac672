package scraper

import (
	"testing"

	"pricepeek/config"
)

func snapshot(t *testing.T, markup string) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(markup)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestClassSetMatcherIsExact(t *testing.T) {
	fp := config.Fingerprint{Tag: "h2", Classes: "display-l text-colour-title-light"}
	snap := snapshot(t, `<body>
<h2 class="display-l text-colour-title-light text-xs">wider</h2>
<h2 class="display-l">narrower</h2>
<h3 class="display-l text-colour-title-light">wrong tag</h3>
<h2 class="  text-colour-title-light
   display-l display-l ">match</h2>
</body>`)

	got := ClassSetMatcher{}.Find(snap.Document().Selection, fp)
	if got.Length() != 1 || got.Text() != "match" {
		t.Errorf("found %d elements, first %q", got.Length(), got.First().Text())
	}
}

func TestClassSetMatcherAnyTag(t *testing.T) {
	fp := config.Fingerprint{Classes: "flex h-[60px]"}
	snap := snapshot(t, `<body><button class="h-[60px] flex">b</button><div class="flex">d</div></body>`)

	got := ClassSetMatcher{}.Find(snap.Document().Selection, fp)
	if got.Length() != 1 || got.Text() != "b" {
		t.Errorf("got %d elements", got.Length())
	}
}

func TestSelectorMatcher(t *testing.T) {
	snap := snapshot(t, htmlPage(`<span data-testid="price">$9.95</span>`, priceBlock("$1.00")))

	got := SelectorMatcher{}.Find(snap.Document().Selection, config.Fingerprint{Selector: "[data-testid=price]"})
	if got.Text() != "$9.95" {
		t.Errorf("selector match = %q", got.Text())
	}

	// Without a selector the escaped class list is used, which also
	// accepts supersets of the classes.
	got = SelectorMatcher{}.Find(snap.Document().Selection, testFP.PriceContainer)
	if got.Length() != 1 {
		t.Errorf("escaped class selector matched %d elements", got.Length())
	}
}

func TestEscapeClass(t *testing.T) {
	tests := map[string]string{
		"flex":             "flex",
		"lg:w-[26rem]":     `lg\:w-\[26rem\]`,
		"max-h-[316px]":    `max-h-\[316px\]`,
		"w-1/2":            `w-1\/2`,
		"aria-disabled:px": `aria-disabled\:px`,
		"2xl:flex":         `\32 xl\:flex`,
		"p-0.5":            `p-0\.5`,
	}
	for in, want := range tests {
		if got := EscapeClass(in); got != want {
			t.Errorf("EscapeClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLiveSelector(t *testing.T) {
	if got := LiveSelector(testFP.OptionList); got != `ul.h-max.max-h-\[316px\].overflow-y-auto.bg-white.p-0` {
		t.Errorf("option list selector = %q", got)
	}
	if got := LiveSelector(config.Fingerprint{Tag: "ul", Classes: "x", Selector: " #menu "}); got != "#menu" {
		t.Errorf("explicit selector not preferred: %q", got)
	}
	if got := LiveSelector(config.Fingerprint{}); got != "*" {
		t.Errorf("empty fingerprint = %q", got)
	}
}

func TestFingerprintLocator(t *testing.T) {
	loc := NewPriceLocator(testFP)

	snap := snapshot(t, htmlPage(priceBlock("$49.99")))
	container, ok := loc.FindPriceContainer(snap)
	if !ok {
		t.Fatal("container not found")
	}
	if text, ok := loc.FindHeading(container); !ok || text != "$49.99" {
		t.Errorf("heading = %q, %v", text, ok)
	}

	snap = snapshot(t, htmlPage(`<div class="flex w-full">$1</div>`))
	if _, ok := loc.FindPriceContainer(snap); ok {
		t.Error("unrelated div matched")
	}
}

func TestFingerprintLocatorSelectorMode(t *testing.T) {
	fp := testFP
	fp.Matcher = "selector"
	fp.PriceContainer = config.Fingerprint{Selector: "section.buy-box"}
	fp.PriceHeading = config.Fingerprint{Selector: "[itemprop=price]"}

	loc := NewPriceLocator(fp)
	snap := snapshot(t, `<section class="buy-box pad"><span itemprop="price"> 7.00 </span></section>`)
	container, ok := loc.FindPriceContainer(snap)
	if !ok {
		t.Fatal("container not found")
	}
	if text, _ := loc.FindHeading(container); text != "7.00" {
		t.Errorf("heading = %q", text)
	}
}
