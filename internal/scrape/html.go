package scrape

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"you-sub/internal/models"
)

// ChannelsPageURL is the page that lists every channel the user follows.
const ChannelsPageURL = "https://www.youtube.com/feed/channels"

// IsChannelsPage reports whether pageURL points at the channel-list page.
func IsChannelsPage(pageURL string) bool {
	return strings.Contains(pageURL, "youtube.com/feed/channels")
}

// ParseChannelsPage reads the channel renderers out of a snapshot of the
// channel-list page. Relative links are resolved against pageURL.
func ParseChannelsPage(r io.Reader, pageURL string) ([]models.RawSubscription, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScrapeUnavailable, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		base, _ = url.Parse(ChannelsPageURL)
	}

	renderers := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "ytd-channel-renderer"
	})
	if len(renderers) == 0 {
		return nil, fmt.Errorf("%w: no channel renderers in page", ErrScrapeUnavailable)
	}

	var subs []models.RawSubscription
	for _, el := range renderers {
		nameEl := findFirst(el, func(n *html.Node) bool {
			return hasID(n, "text") && hasClass(n, "ytd-channel-name")
		})
		linkEl := findFirst(el, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" && hasID(n, "main-link")
		})
		imgEl := findFirst(el, func(n *html.Node) bool { return hasID(n, "img") })
		if nameEl == nil || linkEl == nil || imgEl == nil {
			continue
		}

		href := attr(linkEl, "href")
		if ref, err := url.Parse(href); err == nil && href != "" {
			href = base.ResolveReference(ref).String()
		}

		subs = append(subs, models.RawSubscription{
			Name:       strings.TrimSpace(textContent(nameEl)),
			ProfileURL: href,
			IconURL:    attr(imgEl, "src"),
		})
	}

	return subs, nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasID(n *html.Node, id string) bool {
	return n.Type == html.ElementNode && attr(n, "id") == id
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
