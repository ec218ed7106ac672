package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Snapshot is the rendered markup of a page at one point in time.
type Snapshot struct {
	doc *goquery.Document
}

// NewSnapshot parses markup into a traversable document.
func NewSnapshot(markup string) (*Snapshot, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &Snapshot{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Capture takes a fresh snapshot of page. A failed capture is logged and
// yields an empty document so that every lookup simply finds nothing.
func Capture(ctx context.Context, page Page, log *logrus.Entry) *Snapshot {
	markup, err := page.HTML(ctx)
	if err != nil {
		log.WithError(err).Debug("snapshot capture failed")
		markup = ""
	}
	snap, err := NewSnapshot(markup)
	if err != nil {
		log.WithError(err).Debug("snapshot parse failed")
		snap, _ = NewSnapshot("")
	}
	return snap
}

// Document exposes the parsed tree.
func (s *Snapshot) Document() *goquery.Document {
	return s.doc
}

// Title is the trimmed <title> text.
func (s *Snapshot) Title() string {
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}

// VisibleText is the body text without script, style and noscript content.
func (s *Snapshot) VisibleText() string {
	body := s.doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}
