package syncer

import (
	"context"
	"fmt"
	"strings"

	"you-sub/internal/models"
	"you-sub/internal/scrape"
)

// Snapshot serves a sync from what the extension uploaded: either records it
// already scraped or the HTML of the channel-list page.
type Snapshot struct {
	PageURL       string
	HTML          string
	Subscriptions []models.RawSubscription
}

// EnsureReady checks that the upload came from the channel-list page. An
// upload without a page URL is trusted.
func (s *Snapshot) EnsureReady(ctx context.Context) error {
	if s.PageURL != "" && !scrape.IsChannelsPage(s.PageURL) {
		return fmt.Errorf("%w: %s is not %s", scrape.ErrScrapeUnavailable, s.PageURL, scrape.ChannelsPageURL)
	}
	return nil
}

func (s *Snapshot) Scrape(ctx context.Context) ([]models.RawSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.HTML != "" {
		return scrape.ParseChannelsPage(strings.NewReader(s.HTML), s.PageURL)
	}
	if s.Subscriptions == nil {
		return nil, fmt.Errorf("%w: empty upload", scrape.ErrScrapeUnavailable)
	}
	return s.Subscriptions, nil
}
