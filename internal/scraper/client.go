// Package scraper talks to the broadcaster's website: it scrapes the channel directory from the homepage and resolves
// channel pages into playable stream URLs through the site's AJAX endpoint.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptJSON     = "application/json, text/javascript, */*; q=0.01"
	acceptLanguage = "ro-RO,ro;q=0.9,en-US;q=0.8,en;q=0.7"

	// Upper bound on how much of a response body is read
	maxBodyBytes = 8 << 20
)

// Client is responsible for communicating with the provider's website
type Client struct {
	cfg       config.ProviderConfig
	baseURL   *url.URL
	ajaxURL   string
	limiter   *rate.Limiter
	transport http.RoundTripper
}

// NewClient creates a new provider client from the provider section of the config
func NewClient(cfg config.ProviderConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider base url %q: %w", cfg.BaseURL, err)
	}
	if !base.IsAbs() || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("provider base url %q must be an absolute http(s) url", cfg.BaseURL)
	}

	ajaxRef, err := url.Parse(cfg.AjaxPath)
	if err != nil {
		return nil, fmt.Errorf("invalid ajax path %q: %w", cfg.AjaxPath, err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 90 * time.Second

	return &Client{
		cfg:       cfg,
		baseURL:   base,
		ajaxURL:   base.ResolveReference(ajaxRef).String(),
		limiter:   rate.NewLimiter(limit, 1),
		transport: transport,
	}, nil
}

// BaseURL returns the provider homepage
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// session is a cookie-bearing HTTP client.  A single session is used for every request belonging to one logical
// operation, so cookies set by anti-bot middleware on the first response are sent with the following requests.
type session struct {
	owner  *Client
	client *http.Client
}

func (c *Client) newSession() (*session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &session{
		owner: c,
		client: &http.Client{
			Timeout:   c.cfg.Timeout,
			Jar:       jar,
			Transport: c.transport,
		},
	}, nil
}

// response is a fully read upstream response
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (s *session) get(ctx context.Context, target, referer string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.owner.decorateRequest(req, referer)
	req.Header.Set("Accept", acceptHTML)

	return s.do(req)
}

func (s *session) postForm(ctx context.Context, target string, form url.Values, referer string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.owner.decorateRequest(req, referer)
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	return s.do(req)
}

func (s *session) do(req *http.Request) (*response, error) {
	if err := s.owner.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("waiting for request slot: %w", err)
	}

	log.Trace("Sending request to provider", "method", req.Method, "url", req.URL.String())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Redacted(), err)
	}

	log.Debug("Provider responded", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "bytes", len(body))

	return &response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// decorateRequest applies the browser-like identity used for every request to the provider
func (c *Client) decorateRequest(req *http.Request, referer string) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
}

// belongsToProvider reports whether u points at the provider's host or one of its subdomains
func (c *Client) belongsToProvider(u *url.URL) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	provider := strings.TrimPrefix(strings.ToLower(c.baseURL.Hostname()), "www.")
	return host == provider || strings.HasSuffix(host, "."+provider)
}
