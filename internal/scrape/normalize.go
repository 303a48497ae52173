package scrape

import (
	"errors"
	"regexp"
	"strings"

	"you-sub/internal/models"
)

// ErrScrapeUnavailable is returned when the channel list could not be read:
// no response, wrong page, or a page shape we do not recognize.
var ErrScrapeUnavailable = errors.New("subscriptions could not be scraped")

var (
	channelPattern = regexp.MustCompile(`/channel/([^/?&]+)`)
	userPattern    = regexp.MustCompile(`/user/([^/?&]+)`)
)

// ExtractChannelID returns the stable id in a channel URL. URLs that carry
// neither a /channel/ nor a /user/ segment are their own id.
func ExtractChannelID(url string) string {
	if m := channelPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if m := userPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return url
}

// Normalize converts scraped entries into subscriptions without a group.
// Entries missing a name or URL are dropped. An empty icon is kept: the page
// lazy-loads avatars, so a listed channel often has no image source yet.
// When two entries share a channel id the later one wins.
func Normalize(raw []models.RawSubscription) []models.Subscription {
	subs := make([]models.Subscription, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		url := strings.TrimSpace(r.ProfileURL)
		icon := strings.TrimSpace(r.IconURL)
		if name == "" || url == "" {
			continue
		}
		if strings.HasPrefix(icon, "//") {
			icon = "https:" + icon
		}

		sub := models.Subscription{
			ChannelID: ExtractChannelID(url),
			Name:      name,
			URL:       url,
			Icon:      icon,
		}
		if i, ok := index[sub.ChannelID]; ok {
			subs[i] = sub
			continue
		}
		index[sub.ChannelID] = len(subs)
		subs = append(subs, sub)
	}

	return subs
}
