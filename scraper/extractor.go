package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"pricepeek/config"
	"pricepeek/models"
)

// Options bounds the local waits of the DOM fallback.
type Options struct {
	ConsentTimeout  time.Duration
	DropdownTimeout time.Duration
	SettleTimeout   time.Duration
}

// OptionsFromConfig copies the extractor timeouts out of the loaded config.
func OptionsFromConfig(c config.ExtractorConfig) Options {
	return Options{
		ConsentTimeout:  c.ConsentTimeout,
		DropdownTimeout: c.DropdownTimeout,
		SettleTimeout:   c.SettleTimeout,
	}
}

// Extractor reads one price from one product page.
type Extractor struct {
	provider SessionProvider
	fp       config.Fingerprints
	locator  PriceLocator
	matcher  ElementMatcher
	detector *ChallengeDetector
	opts     Options
	log      *logrus.Logger
}

// NewExtractor wires an extractor over a session provider.
func NewExtractor(provider SessionProvider, fp config.Fingerprints, opts Options, logger *logrus.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		fp:       fp,
		locator:  NewPriceLocator(fp),
		matcher:  NewElementMatcher(fp.Matcher),
		detector: NewChallengeDetector(),
		opts:     opts,
		log:      logger,
	}
}

// Run opens a session on url, extracts the price and closes the session.
// The only error returned wraps ErrSessionOpen; everything after the
// page is open degrades into the record instead.
func (e *Extractor) Run(ctx context.Context, url string) (models.Extraction, error) {
	log := e.log.WithField("url", url)

	session, err := e.provider.Open(ctx, url)
	if err != nil {
		if !errors.Is(err, ErrSessionOpen) {
			err = fmt.Errorf("%w: %w", ErrSessionOpen, err)
		}
		return models.Extraction{}, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.WithError(cerr).Warn("close browser session")
		}
	}()

	res := e.extract(ctx, session, log)
	log.WithFields(logrus.Fields{
		"path": res.Path,
		"kind": res.Record.Kind.String(),
	}).Info("✅ extraction finished")
	return res, nil
}

// Extract runs the extraction against an already open page.
func (e *Extractor) Extract(ctx context.Context, page Page) models.Extraction {
	return e.extract(ctx, page, logrus.NewEntry(e.log))
}

func (e *Extractor) extract(ctx context.Context, page Page, log *logrus.Entry) models.Extraction {
	first := Capture(ctx, page, log)
	if c := e.detector.Inspect(first); c.Detected {
		log.WithFields(logrus.Fields{
			"kind":    c.Kind,
			"score":   c.Score,
			"reasons": c.String(),
		}).Warn("⚠️ page looks like a challenge, continuing anyway")
	}

	if res, ok := e.fromStructuredData(first, log); ok {
		return res
	}
	return e.fromDOM(ctx, page, log)
}

// fromStructuredData never touches the page.
func (e *Extractor) fromStructuredData(snap *Snapshot, log *logrus.Entry) (models.Extraction, bool) {
	record, result, err := ReadStructured(snap, e.fp.DataScriptID)
	switch result {
	case StructuredPrice, StructuredNoPrices:
		return models.Extraction{Record: record, Path: models.PathStructured}, true
	}
	if err != nil {
		log.WithError(err).WithField("step", "structured").Debug("structured data unusable, falling back to DOM")
	}
	return models.Extraction{}, false
}

func (e *Extractor) fromDOM(ctx context.Context, page Page, log *logrus.Entry) models.Extraction {
	e.dismissConsent(ctx, page, log)

	pre, haveContainer := e.headline(Capture(ctx, page, log))
	path := models.PathDOMBasic

	if e.openDropdown(ctx, page, log) {
		path = models.PathDOMWithDropdown
		if post, ok := e.selectTarget(ctx, page, log); ok {
			return models.Extraction{
				Record: models.Pair(post, pre),
				Path:   models.PathDOMWithSelection,
			}
		}
	}

	if !haveContainer {
		return models.Extraction{Record: models.Empty(), Path: models.PathNotFound}
	}
	return models.Extraction{Record: models.Single(pre), Path: path}
}

// headline reports the heading text and whether a container was present.
func (e *Extractor) headline(snap *Snapshot) (string, bool) {
	container, ok := e.locator.FindPriceContainer(snap)
	if !ok {
		return "", false
	}
	text, _ := e.locator.FindHeading(container)
	return text, true
}

func (e *Extractor) dismissConsent(ctx context.Context, page Page, log *logrus.Entry) {
	log = log.WithField("step", "consent")
	for _, label := range e.fp.ConsentLabels {
		err := page.ClickText(ctx, buttonSelector, label, e.opts.ConsentTimeout)
		if err == nil {
			log.WithField("label", label).Debug("consent dialog dismissed")
			return
		}
		log.WithError(err).WithField("label", label).Debug("consent button unavailable")
	}
}

func (e *Extractor) openDropdown(ctx context.Context, page Page, log *logrus.Entry) bool {
	log = log.WithField("step", "dropdown")
	if err := page.ClickVisible(ctx, LiveSelector(e.fp.Dropdown), e.opts.DropdownTimeout); err != nil {
		log.WithError(err).Debug("no eligibility dropdown")
		return false
	}
	e.settle(ctx, page, log)
	return true
}

// selectTarget picks the configured option and returns the headline that
// renders after it. False means the option, the list or the new price
// was missing.
func (e *Extractor) selectTarget(ctx context.Context, page Page, log *logrus.Entry) (string, bool) {
	log = log.WithField("step", "selection")
	target := e.fp.TargetOption

	snap := Capture(ctx, page, log)
	list := e.matcher.Find(snap.Document().Selection, e.fp.OptionList).First()
	if list.Length() == 0 {
		log.Debug("dropdown opened without an option list")
		return "", false
	}

	found := false
	e.matcher.Find(list, e.fp.OptionItem).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		found = strings.TrimSpace(item.Text()) == target
		return !found
	})
	if !found {
		log.WithField("option", target).Debug("option not offered")
		return "", false
	}

	if err := page.ClickText(ctx, optionSelector, target, e.opts.DropdownTimeout); err != nil {
		log.WithError(err).WithField("option", target).Debug("option could not be clicked")
		return "", false
	}
	e.settle(ctx, page, log)

	post, _ := e.headline(Capture(ctx, page, log))
	if post == "" {
		log.Debug("no price after selection")
		return "", false
	}
	return post, true
}

func (e *Extractor) settle(ctx context.Context, page Page, log *logrus.Entry) {
	if err := page.Settle(ctx, e.opts.SettleTimeout); err != nil {
		log.WithError(err).Debug("page still changing, reading anyway")
	}
}
