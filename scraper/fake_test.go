package scraper

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pricepeek/config"
)

var testFP = config.DefaultFingerprints()

// fakePage serves scripted HTML states. Clicking a known (selector, text)
// pair moves it to the next state; anything else is unavailable.
type fakePage struct {
	state       string
	states      map[string]string
	transitions map[string]string

	clicks      []string
	settles     int
	htmlCalls   int
	htmlErr     error
	panicOnHTML bool
}

func clickKey(selector, text string) string {
	return selector + "|" + text
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.htmlCalls++
	if p.panicOnHTML {
		panic("renderer crashed")
	}
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.states[p.state], nil
}

func (p *fakePage) ClickText(_ context.Context, selector, text string, _ time.Duration) error {
	return p.click(clickKey(selector, text))
}

func (p *fakePage) ClickVisible(_ context.Context, selector string, _ time.Duration) error {
	return p.click(clickKey(selector, ""))
}

func (p *fakePage) click(key string) error {
	p.clicks = append(p.clicks, key)
	next, ok := p.transitions[key]
	if !ok {
		return ErrElementUnavailable
	}
	p.state = next
	return nil
}

func (p *fakePage) Settle(context.Context, time.Duration) error {
	p.settles++
	return nil
}

type fakeSession struct {
	*fakePage
	closes int
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

type fakeProvider struct {
	build    func() *fakePage
	err      error
	sessions []*fakeSession
}

func (p *fakeProvider) Open(context.Context, string) (Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	s := &fakeSession{fakePage: p.build()}
	p.sessions = append(p.sessions, s)
	return s, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestExtractor(provider SessionProvider) *Extractor {
	return NewExtractor(provider, testFP, Options{
		ConsentTimeout:  time.Millisecond,
		DropdownTimeout: time.Millisecond,
		SettleTimeout:   time.Millisecond,
	}, quietLogger())
}

// HTML fixtures built from the default fingerprints.

func htmlPage(body ...string) string {
	return "<html><head><title>Product</title></head><body>" + strings.Join(body, "") + "</body></html>"
}

func priceBlock(price string) string {
	return `<div class="` + testFP.PriceContainer.Classes + `">` +
		`<h2 class="` + testFP.PriceHeading.Classes + `">  ` + price + ` </h2>` +
		`<p>Free delivery over $50</p></div>`
}

func dropdownControl() string {
	return `<button class="` + testFP.Dropdown.Classes + `">Select your eligibility</button>`
}

func optionList(items ...string) string {
	var b strings.Builder
	b.WriteString(`<ul class="` + testFP.OptionList.Classes + `" role="listbox">`)
	for _, it := range items {
		b.WriteString(`<li role="option" class="` + testFP.OptionItem.Classes + `"> ` + it + ` </li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

func consentDialog() string {
	return `<div role="dialog"><p>We use cookies.</p><button>Accept All Cookies</button><button>Close</button></div>`
}

func nextData(blob string) string {
	return `<script id="__NEXT_DATA__" type="application/json">` + blob + `</script>`
}

func staticPage(markup string) func() *fakePage {
	return func() *fakePage {
		return &fakePage{state: "initial", states: map[string]string{"initial": markup}}
	}
}
