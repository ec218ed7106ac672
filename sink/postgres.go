package sink

import (
	"context"

	"pricepeek/models"
	"pricepeek/scraper"
)

// CheckStore persists price history rows.
type CheckStore interface {
	InsertCheck(ctx context.Context, h *models.PriceHistory) error
}

// PostgresSink records each check in the price_checks table.
type PostgresSink struct {
	store  CheckStore
	parser *scraper.LocaleParser
}

func NewPostgresSink(store CheckStore) *PostgresSink {
	return &PostgresSink{store: store, parser: scraper.NewLocaleParser()}
}

func (s *PostgresSink) Write(ctx context.Context, c models.Check) error {
	h := History(c, s.parser)
	return s.store.InsertCheck(ctx, &h)
}

// Close is a no-op; the pool belongs to the database package.
func (s *PostgresSink) Close() error { return nil }
