package scraper

import (
	"context"
	"errors"
	"time"
)

// ErrSessionOpen wraps every failure to launch, connect or navigate a
// browser session. It is the only error Extractor.Run returns.
var ErrSessionOpen = errors.New("open browser session")

// ErrElementUnavailable is returned by Page implementations when a target
// is missing, hidden or detached before the local timeout.
var ErrElementUnavailable = errors.New("element unavailable")

// Page is the slice of a live browser tab the extractor drives.
type Page interface {
	// HTML returns the current rendered markup.
	HTML(ctx context.Context) (string, error)
	// ClickText clicks the first element matching selector whose trimmed
	// text equals text, waiting at most timeout for it to appear.
	ClickText(ctx context.Context, selector, text string, timeout time.Duration) error
	// ClickVisible waits at most timeout for selector to be visible, then clicks it.
	ClickVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Settle waits at most timeout for the DOM to stop changing.
	Settle(ctx context.Context, timeout time.Duration) error
}

// Session is a Page that owns its browser and must be closed.
type Session interface {
	Page
	Close() error
}

// SessionProvider opens a session already navigated to url.
type SessionProvider interface {
	Open(ctx context.Context, url string) (Session, error)
}

// Selectors for controls matched by accessible text.
const (
	buttonSelector = `button, [role="button"]`
	optionSelector = `[role="option"]`
)
