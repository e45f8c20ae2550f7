package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/metrics"
	"github.com/PuerkitoBio/goquery"
)

// Selectors for the provider's homepage markup.  These are specific to the site and the first thing to check when the
// directory suddenly comes back empty.
const (
	channelItemSelector  = "div.item-canale"
	channelTitleSelector = "div.titlu-canal"
)

// FetchDirectory downloads the provider's homepage and extracts the channel grid from it
func (c *Client) FetchDirectory(ctx context.Context) ([]domain.Channel, error) {
	sess, err := c.newSession()
	if err != nil {
		return nil, err
	}

	homepage := c.baseURL.String()
	log.Debug("Fetching channel directory", "url", homepage)

	start := time.Now()
	resp, err := sess.get(ctx, homepage, "")
	metrics.ObserveUpstream(metrics.KindDirectory, start)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		if isChallengeResponse(resp) {
			return nil, fmt.Errorf("fetching %s: %w", homepage, domain.ErrBlockedByProtection)
		}
		return nil, &domain.StatusError{URL: homepage, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	channels := c.parseDirectory(doc)
	if len(channels) == 0 && isChallengePage(doc) {
		return nil, fmt.Errorf("fetching %s: %w", homepage, domain.ErrBlockedByProtection)
	}

	log.Debug("Channel directory parsed", "count", len(channels))
	return channels, nil
}

// ParseDirectory extracts channels from homepage HTML.  Relative links are resolved against baseURL and links that
// leave the provider's site are dropped.  Document order is preserved.
func (c *Client) ParseDirectory(html string) ([]domain.Channel, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return c.parseDirectory(doc), nil
}

func (c *Client) parseDirectory(doc *goquery.Document) []domain.Channel {
	channels := make([]domain.Channel, 0)

	doc.Find(channelItemSelector).Each(func(i int, item *goquery.Selection) {
		href, hasLink := item.Find("a").First().Attr("href")
		img := item.Find("img").First()
		src, hasImg := img.Attr("src")
		href, src = strings.TrimSpace(href), strings.TrimSpace(src)

		if !hasLink || !hasImg || href == "" || src == "" {
			log.Debug("Skipping channel grid item without link or image", "index", i)
			return
		}

		link, err := c.absolute(href)
		if err != nil {
			log.Debug("Skipping channel grid item with unparseable link", "index", i, "href", href, "error", err)
			return
		}
		if !c.belongsToProvider(link) {
			log.Debug("Skipping foreign link in channel grid", "index", i, "href", href)
			return
		}

		logo, err := c.absolute(src)
		if err != nil {
			log.Debug("Skipping channel grid item with unparseable logo", "index", i, "src", src, "error", err)
			return
		}

		channels = append(channels, domain.Channel{
			Name: channelName(item, img),
			URL:  link.String(),
			Logo: logo.String(),
		})
	})

	return channels
}

// channelName prefers the explicit title, then the logo's alt text, then a placeholder
func channelName(item, img *goquery.Selection) string {
	if name := strings.TrimSpace(item.Find(channelTitleSelector).First().Text()); name != "" {
		return name
	}
	if alt, ok := img.Attr("alt"); ok {
		if alt = strings.TrimSpace(alt); alt != "" {
			return alt
		}
	}
	return domain.PlaceholderChannelName
}

// absolute resolves ref against the provider homepage.  Absolute references are returned unchanged.
func (c *Client) absolute(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		return u, nil
	}
	return c.baseURL.ResolveReference(u), nil
}
