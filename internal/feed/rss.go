package feed

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eduncan911/podcast"
	"you-sub/internal/models"
)

const uploadsFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id="

// BaseURL returns the configured public URL or derives one from the request.
func BaseURL(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateGroupRSS renders the channels of one group as an RSS document.
func GenerateGroupRSS(group models.GroupView, baseURL string, now time.Time) (string, error) {
	p := podcast.New(
		fmt.Sprintf("%s channels", group.Name),
		fmt.Sprintf("%s/groups/%s/rss", baseURL, url.PathEscape(group.Name)),
		fmt.Sprintf("YouTube channels in the %q group.", group.Name),
		&now, &now,
	)

	for _, sub := range group.Members {
		description := sub.Name
		// Ids taken from /user/ URLs or whole URLs have no uploads feed.
		if strings.HasPrefix(sub.ChannelID, "UC") {
			description = fmt.Sprintf("%s uploads: %s%s", sub.Name, uploadsFeedURL, sub.ChannelID)
		}

		item := podcast.Item{
			Title:       sub.Name,
			Link:        sub.URL,
			Description: description,
			GUID:        sub.ChannelID,
		}
		item.AddPubDate(&now)
		if sub.Icon != "" {
			item.AddImage(sub.Icon)
		}
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("failed to add %s to feed: %w", sub.ChannelID, err)
		}
	}

	return p.String(), nil
}
