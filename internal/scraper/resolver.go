package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/metrics"
)

// ErrForeignChannelURL is returned when asked to resolve a page that is not on the provider's site
var ErrForeignChannelURL = errors.New("channel url does not belong to the provider")

// postIDPattern matches the inline script declaration carrying the channel's content identifier
var postIDPattern = regexp.MustCompile(`const\s+postID\s*=\s*['"](\d+)['"];`)

// ajaxResponse is the envelope returned by WordPress' admin-ajax.php
type ajaxResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// ExtractPostID finds the postID declaration in a channel page
func ExtractPostID(html string) (string, bool) {
	match := postIDPattern.FindStringSubmatch(html)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ResolveStream fetches a channel page, extracts its postID and exchanges it for a media URL.  Both requests share a
// single cookie-bearing session.
func (c *Client) ResolveStream(ctx context.Context, channelURL string) (string, error) {
	pageURL, err := url.Parse(channelURL)
	if err != nil {
		return "", fmt.Errorf("invalid channel url %q: %w", channelURL, err)
	}
	if !c.belongsToProvider(pageURL) {
		return "", fmt.Errorf("%q: %w", channelURL, ErrForeignChannelURL)
	}

	sess, err := c.newSession()
	if err != nil {
		return "", err
	}

	log.Debug("Fetching channel page", "url", channelURL)
	start := time.Now()
	page, err := sess.get(ctx, channelURL, channelURL)
	metrics.ObserveUpstream(metrics.KindChannelPage, start)
	if err != nil {
		return "", err
	}

	if !page.ok() {
		if isChallengeResponse(page) {
			return "", fmt.Errorf("fetching %s: %w", channelURL, domain.ErrBlockedByProtection)
		}
		return "", &domain.StatusError{URL: channelURL, Code: page.StatusCode}
	}

	postID, found := ExtractPostID(string(page.Body))
	if !found {
		if isChallengeResponse(page) {
			return "", fmt.Errorf("fetching %s: %w", channelURL, domain.ErrBlockedByProtection)
		}
		return "", domain.ErrIdentifierNotFound
	}
	log.Debug("Found channel post ID", "url", channelURL, "post_id", postID)

	form := url.Values{
		"action":  {c.cfg.AjaxAction},
		"tab":     {c.cfg.ServerTab},
		"post_id": {postID},
	}

	start = time.Now()
	ajax, err := sess.postForm(ctx, c.ajaxURL, form, channelURL)
	metrics.ObserveUpstream(metrics.KindAjax, start)
	if err != nil {
		return "", err
	}

	if isChallengeResponse(ajax) {
		return "", fmt.Errorf("requesting video source for %s: %w", channelURL, domain.ErrBlockedByProtection)
	}
	if !ajax.ok() {
		log.Warn("Video source request refused", "url", channelURL, "post_id", postID, "status", ajax.StatusCode)
		return "", fmt.Errorf("%w: %w", domain.ErrServerBlocked, &domain.StatusError{URL: c.ajaxURL, Code: ajax.StatusCode})
	}

	mediaURL, err := decodeAjaxResponse(ajax.Body)
	if err != nil {
		log.Warn("Video source request refused", "url", channelURL, "post_id", postID, "status", ajax.StatusCode, "error", err)
		return "", err
	}

	return mediaURL, nil
}

// decodeAjaxResponse pulls the media URL out of the AJAX envelope.  Every response that is not a successful
// envelope with a non-empty string payload is reported as ErrServerBlocked.
func decodeAjaxResponse(body []byte) (string, error) {
	var envelope ajaxResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", domain.ErrServerBlocked, err)
	}
	if !envelope.Success {
		return "", fmt.Errorf("%w: success=false", domain.ErrServerBlocked)
	}

	var mediaURL string
	if err := json.Unmarshal(envelope.Data, &mediaURL); err != nil || mediaURL == "" {
		return "", fmt.Errorf("%w: response carried no media url", domain.ErrServerBlocked)
	}

	return mediaURL, nil
}
