// Package sink delivers finished price checks: the result line to stdout
// and, when configured, a row to Postgres and a point to InfluxDB.
package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"pricepeek/models"
	"pricepeek/scraper"
)

// Sink receives every completed check.
type Sink interface {
	Write(ctx context.Context, c models.Check) error
	Close() error
}

// StdoutSink prints the result line and nothing else.
type StdoutSink struct {
	w io.Writer
}

func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Write(_ context.Context, c models.Check) error {
	_, err := fmt.Fprintln(s.w, c.Line)
	return err
}

func (s *StdoutSink) Close() error { return nil }

// Multi writes to a primary sink and any number of secondary ones.
// Only the primary's error is returned; the others are logged.
type Multi struct {
	primary   Sink
	secondary []Sink
	log       *logrus.Logger
}

func NewMulti(logger *logrus.Logger, primary Sink, secondary ...Sink) *Multi {
	return &Multi{primary: primary, secondary: secondary, log: logger}
}

func (m *Multi) Write(ctx context.Context, c models.Check) error {
	err := m.primary.Write(ctx, c)
	for _, s := range m.secondary {
		if serr := s.Write(ctx, c); serr != nil {
			m.log.WithError(serr).WithField("url", c.URL).Warn("secondary sink failed")
		}
	}
	return err
}

func (m *Multi) Close() error {
	var errs []string
	for _, s := range append([]Sink{m.primary}, m.secondary...) {
		if err := s.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close sinks: %s", strings.Join(errs, "; "))
	}
	return nil
}

// History converts a check into the stored shape, parsing the printed
// prices into numbers where they can be read.
func History(c models.Check, parser *scraper.LocaleParser) models.PriceHistory {
	r := c.Result.Record
	h := models.PriceHistory{
		URL:        c.URL,
		Kind:       r.Kind.String(),
		Path:       string(c.Result.Path),
		Regular:    r.Regular,
		Discounted: r.Discounted,
		Line:       c.Line,
		DurationMs: c.Duration.Milliseconds(),
		CheckedAt:  c.CheckedAt,
	}
	if r.Regular != "" {
		if v, cur, err := parser.ParsePrice(r.Regular); err == nil {
			h.RegularValue, h.Currency = v, cur
		}
	}
	if r.Discounted != "" {
		h.DiscountedValue = parser.ParseOrZero(r.Discounted)
	}
	return h
}
