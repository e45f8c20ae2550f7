package scraper

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cfChallengeHeaders are response headers that Cloudflare sets on challenge/interstitial responses
var cfChallengeHeaders = map[string]string{
	"Cf-Mitigated": "challenge",
}

// isChallengeResponse reports whether a response is an anti-bot challenge rather than the page that was asked for
func isChallengeResponse(resp *response) bool {
	for header, value := range cfChallengeHeaders {
		if strings.EqualFold(resp.Header.Get(header), value) {
			return true
		}
	}

	// Challenge pages are only ever served with these statuses
	switch resp.StatusCode {
	case http.StatusOK, http.StatusForbidden, http.StatusServiceUnavailable, http.StatusTooManyRequests:
	default:
		return false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return false
	}
	return isChallengePage(doc)
}

// isChallengePage inspects a parsed page for the markers of a Cloudflare style challenge
func isChallengePage(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	if strings.Contains(title, "just a moment") || strings.Contains(title, "attention required") {
		return true
	}

	if doc.Find("#cf-wrapper").Length() > 0 || doc.Find("#challenge-form").Length() > 0 ||
		doc.Find("#challenge-running").Length() > 0 {
		return true
	}

	return doc.Find(`script[src*="/cdn-cgi/challenge-platform/"]`).Length() > 0
}
