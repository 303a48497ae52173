package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"you-sub/internal/models"
	"you-sub/internal/scrape"
)

const DefaultScrapeTimeout = 10 * time.Second

// Navigator makes sure the channel-list page is loaded before scraping.
type Navigator interface {
	EnsureReady(ctx context.Context) error
}

// Scraper harvests the channel list from the loaded page.
type Scraper interface {
	Scrape(ctx context.Context) ([]models.RawSubscription, error)
}

// Syncer persists a fresh scrape. Implemented by *reconcile.Reconciler.
type Syncer interface {
	Sync(ctx context.Context, fresh []models.Subscription) (models.State, error)
}

// Workflow runs navigate, scrape, normalize and reconcile in order and stops
// between steps once ctx is done.
type Workflow struct {
	Navigator     Navigator
	Scraper       Scraper
	Syncer        Syncer
	ScrapeTimeout time.Duration
}

func (w *Workflow) Run(ctx context.Context) (models.State, error) {
	if err := w.Navigator.EnsureReady(ctx); err != nil {
		return models.State{}, unavailable(ctx, "navigate", err)
	}
	if err := ctx.Err(); err != nil {
		return models.State{}, err
	}

	timeout := w.ScrapeTimeout
	if timeout <= 0 {
		timeout = DefaultScrapeTimeout
	}
	scrapeCtx, cancel := context.WithTimeout(ctx, timeout)
	raw, err := w.Scraper.Scrape(scrapeCtx)
	cancel()
	if err != nil {
		return models.State{}, unavailable(ctx, "scrape", err)
	}
	if err := ctx.Err(); err != nil {
		return models.State{}, err
	}

	fresh := scrape.Normalize(raw)
	log.Printf("Scraped %d channels, %d usable", len(raw), len(fresh))

	if err := ctx.Err(); err != nil {
		return models.State{}, err
	}
	return w.Syncer.Sync(ctx, fresh)
}

// unavailable reports a failed step as ErrScrapeUnavailable unless the
// caller's own context was cancelled, in which case that error is returned.
func unavailable(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, scrape.ErrScrapeUnavailable) {
		return fmt.Errorf("%s: %w", step, err)
	}
	return fmt.Errorf("%s: %w: %w", step, scrape.ErrScrapeUnavailable, err)
}
