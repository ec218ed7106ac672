package scraper

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"pricepeek/config"
)

// ElementMatcher finds elements described by a fingerprint under root.
type ElementMatcher interface {
	Find(root *goquery.Selection, fp config.Fingerprint) *goquery.Selection
}

// ClassSetMatcher matches elements whose class attribute is exactly the
// fingerprint's class set. Order, repeats and whitespace are ignored but
// an extra or missing class is a miss.
type ClassSetMatcher struct{}

func (ClassSetMatcher) Find(root *goquery.Selection, fp config.Fingerprint) *goquery.Selection {
	want := classSet(fp.Classes)
	tag := strings.TrimSpace(fp.Tag)
	if tag == "" {
		tag = "*"
	}
	return root.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return sameSet(classSet(class), want)
	})
}

// SelectorMatcher matches by CSS selector. A fingerprint without one is
// turned into a selector requiring all of its classes.
type SelectorMatcher struct{}

func (SelectorMatcher) Find(root *goquery.Selection, fp config.Fingerprint) *goquery.Selection {
	return root.Find(LiveSelector(fp))
}

// NewElementMatcher picks the matcher named in the fingerprints file.
func NewElementMatcher(name string) ElementMatcher {
	if name == "selector" {
		return SelectorMatcher{}
	}
	return ClassSetMatcher{}
}

// PriceLocator finds the headline price in a snapshot.
type PriceLocator interface {
	// FindPriceContainer returns the first price container, if any.
	FindPriceContainer(snap *Snapshot) (*goquery.Selection, bool)
	// FindHeading returns the trimmed heading text inside container.
	FindHeading(container *goquery.Selection) (string, bool)
}

// FingerprintLocator locates the price block with an ElementMatcher.
type FingerprintLocator struct {
	Matcher ElementMatcher
	Block   config.Fingerprint
	Heading config.Fingerprint
}

// NewPriceLocator builds the locator for a fingerprint set.
func NewPriceLocator(fp config.Fingerprints) *FingerprintLocator {
	return &FingerprintLocator{
		Matcher: NewElementMatcher(fp.Matcher),
		Block:   fp.PriceContainer,
		Heading: fp.PriceHeading,
	}
}

// FindPriceContainer implements PriceLocator.
func (l *FingerprintLocator) FindPriceContainer(snap *Snapshot) (*goquery.Selection, bool) {
	sel := l.Matcher.Find(snap.Document().Selection, l.Block).First()
	return sel, sel.Length() > 0
}

// FindHeading implements PriceLocator.
func (l *FingerprintLocator) FindHeading(container *goquery.Selection) (string, bool) {
	h := l.Matcher.Find(container, l.Heading).First()
	if h.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(h.Text())
	return text, text != ""
}

// LiveSelector is the CSS selector used against the live page for fp.
func LiveSelector(fp config.Fingerprint) string {
	if s := strings.TrimSpace(fp.Selector); s != "" {
		return s
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(fp.Tag))
	for _, c := range strings.Fields(fp.Classes) {
		b.WriteByte('.')
		b.WriteString(EscapeClass(c))
	}
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}

// EscapeClass escapes a class name for use after "." in a CSS selector.
// Utility classes such as "lg:w-[26rem]" carry characters that would
// otherwise be read as pseudo-classes or attribute selectors.
func EscapeClass(class string) string {
	var b strings.Builder
	for i, r := range class {
		switch {
		case i == 0 && unicode.IsDigit(r):
			// Leading digits need a hex escape with a terminating space.
			b.WriteString(`\3`)
			b.WriteRune(r)
			b.WriteByte(' ')
		case r == '-' || r == '_' || r > unicode.MaxASCII:
			b.WriteRune(r)
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

func classSet(class string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range strings.Fields(class) {
		set[c] = struct{}{}
	}
	return set
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
