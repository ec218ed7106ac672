package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pricepeek/database"
	"pricepeek/models"
)

// maxHistory caps how many rows ListRecent returns.
const maxHistory = 500

type CheckRepository struct {
	db *sql.DB
}

// NewCheckRepository uses db, or the shared database.DB when db is nil.
func NewCheckRepository(db *sql.DB) *CheckRepository {
	if db == nil {
		db = database.DB
	}
	return &CheckRepository{db: db}
}

// InsertCheck stores one check and fills in its ID and timestamp.
func (r *CheckRepository) InsertCheck(ctx context.Context, h *models.PriceHistory) error {
	query := `
		INSERT INTO price_checks (url, kind, path, regular, discounted, regular_value, discounted_value, currency, line, duration_ms, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, checked_at
	`

	err := r.db.QueryRowContext(ctx, query,
		h.URL, h.Kind, h.Path, h.Regular, h.Discounted,
		h.RegularValue, h.DiscountedValue, h.Currency,
		h.Line, h.DurationMs, h.CheckedAt,
	).Scan(&h.ID, &h.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to insert price check: %w", err)
	}
	return nil
}

// ListRecent returns the latest checks for url, newest first.
func (r *CheckRepository) ListRecent(ctx context.Context, url string, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	query := `
		SELECT id, url, kind, path, regular, discounted, regular_value, discounted_value, currency, line, duration_ms, checked_at
		FROM price_checks
		WHERE url = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, url, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var history []models.PriceHistory
	for rows.Next() {
		var h models.PriceHistory
		var currency sql.NullString
		err := rows.Scan(
			&h.ID, &h.URL, &h.Kind, &h.Path, &h.Regular, &h.Discounted,
			&h.RegularValue, &h.DiscountedValue, &currency,
			&h.Line, &h.DurationMs, &h.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price check: %w", err)
		}
		h.Currency = currency.String
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}

	return history, nil
}
