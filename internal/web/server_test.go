package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testChannels = []domain.Channel{
	{Name: "Digi 24", URL: "https://rds.live/digi24/", Logo: "https://rds.live/digi24.png"},
	{Name: "Antena 3 CNN Romania HD", URL: "https://rds.live/antena3/", Logo: "https://rds.live/antena3.png"},
	{Name: "Pro TV", URL: "https://rds.live/protv/", Logo: "https://rds.live/protv.png"},
	{Name: "TVR 1", URL: "https://rds.live/tvr1/", Logo: "https://rds.live/tvr1.png"},
}

type fakeSource struct {
	mu       sync.Mutex
	channels []domain.Channel
	results  map[string]domain.StreamResult
	resolved []string
}

func (f *fakeSource) Channels(context.Context) []domain.Channel {
	if f.channels == nil {
		return []domain.Channel{}
	}
	return f.channels
}

func (f *fakeSource) Resolve(_ context.Context, channelURL string) domain.StreamResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, channelURL)
	if r, ok := f.results[channelURL]; ok {
		return r
	}
	return domain.StreamResult{Err: domain.ErrIdentifierNotFound}
}

func newTestServer(source *fakeSource) http.Handler {
	return NewServer(config.Default(), source).Handler()
}

func newSource() *fakeSource {
	return &fakeSource{
		channels: testChannels,
		results: map[string]domain.StreamResult{
			"https://rds.live/digi24/": {MediaURL: "http://stream.example/digi24.m3u8"},
			"https://rds.live/protv/":  {Err: domain.ErrServerBlocked},
		},
	}
}

// browser keeps the session cookie between requests like a real browser would
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func TestGridPage(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(newSource())}

	rec := b.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "TV Romania Direct")
	assert.Contains(t, body, "Tap a logo to watch.")
	assert.Contains(t, body, `src="https://rds.live/digi24.png"`)
	// Button labels keep the first 15 characters
	assert.Contains(t, body, ">Antena 3 CNN Ro</button>")
	// 4 channels in rows of 3
	assert.Equal(t, 2, strings.Count(body, `<div class="row">`))
	// Viewing the grid does not need a session
	assert.Empty(t, b.cookies)
}

func TestGridPageEmptyDirectory(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(&fakeSource{})}

	rec := b.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), EmptyMessage)
}

func TestSelectAndBack(t *testing.T) {
	source := newSource()
	b := &browser{t: t, handler: newTestServer(source)}
	b.get("/")

	rec := b.post("/select", url.Values{"url": {"https://rds.live/digi24/"}, "name": {"Digi 24"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Len(t, b.cookies, 1)
	assert.Equal(t, SessionCookie, b.cookies[0].Name)

	rec = b.get("/")
	body := rec.Body.String()
	assert.Contains(t, body, "Back to Channels")
	assert.Contains(t, body, "<h2>Digi 24</h2>")
	assert.Contains(t, body, `<video controls autoplay playsinline src="http://stream.example/digi24.m3u8">`)
	assert.Equal(t, []string{"https://rds.live/digi24/"}, source.resolved)

	rec = b.post("/back", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body = b.get("/").Body.String()
	assert.Contains(t, body, "Tap a logo to watch.")
	assert.NotContains(t, body, "Back to Channels")
}

func TestPlayerPageShowsError(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(newSource())}
	b.get("/")
	b.post("/select", url.Values{"url": {"https://rds.live/protv/"}, "name": {"Pro TV"}})

	body := b.get("/").Body.String()

	assert.Contains(t, body, `<div class="error">server blocked the video request</div>`)
	assert.NotContains(t, body, "<video")
}

func TestSelectWithoutURL(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(newSource())}

	rec := b.post("/select", url.Values{"name": {"Digi 24"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, b.cookies)
	assert.Contains(t, b.get("/").Body.String(), "Tap a logo to watch.")
}

func TestSessionsAreIndependent(t *testing.T) {
	handler := newTestServer(newSource())
	alice := &browser{t: t, handler: handler}
	bob := &browser{t: t, handler: handler}
	alice.get("/")
	bob.get("/")

	alice.post("/select", url.Values{"url": {"https://rds.live/digi24/"}, "name": {"Digi 24"}})

	assert.Contains(t, alice.get("/").Body.String(), "Back to Channels")
	assert.Contains(t, bob.get("/").Body.String(), "Tap a logo to watch.")
}

func TestAPIChannels(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(newSource())}

	rec := b.get("/api/channels")

	require.Equal(t, http.StatusOK, rec.Code)
	var channels []domain.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channels))
	assert.Equal(t, testChannels, channels)
}

func TestAPIChannelsEmptyIsArray(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(&fakeSource{})}

	rec := b.get("/api/channels")

	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAPIStream(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(newSource())}

	rec := b.get("/api/stream?url=" + url.QueryEscape("https://rds.live/digi24/"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"media_url":"http://stream.example/digi24.m3u8"}`, rec.Body.String())

	rec = b.get("/api/stream?url=" + url.QueryEscape("https://rds.live/protv/"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"server blocked the video request"}`, rec.Body.String())

	rec = b.get("/api/stream")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	b := &browser{t: t, handler: newTestServer(newSource())}

	rec := b.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = b.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func newStoreContext(cookie string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	return c
}

// sessionID returns the id the store handed out through the response cookie
func sessionID(t *testing.T, c *gin.Context) string {
	t.Helper()
	for _, parsed := range (&http.Response{Header: c.Writer.Header()}).Cookies() {
		if parsed.Name == SessionCookie {
			return parsed.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func TestSessionStorePrunesIdleSessions(t *testing.T) {
	store := NewSessionStore(time.Hour, 0)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Get(newStoreContext(""))
	store.Get(newStoreContext(""))
	assert.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Hour)
	store.Get(newStoreContext(""))
	assert.Equal(t, 1, store.Len())
}

func TestSessionStoreLookupDoesNotCreate(t *testing.T) {
	store := NewSessionStore(time.Hour, 0)

	assert.Nil(t, store.Lookup(newStoreContext("")))
	assert.Nil(t, store.Lookup(newStoreContext("unknown-id")))
	assert.Equal(t, 0, store.Len())

	c := newStoreContext("")
	created := store.Get(c)
	assert.Same(t, created, store.Lookup(newStoreContext(sessionID(t, c))))
}

func TestSessionStoreEvictsLeastRecentlySeen(t *testing.T) {
	store := NewSessionStore(time.Hour, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	first := newStoreContext("")
	store.Get(first)
	now = now.Add(time.Minute)
	second := newStoreContext("")
	store.Get(second)

	// Touching the first session makes the second the oldest
	now = now.Add(time.Minute)
	require.NotNil(t, store.Lookup(newStoreContext(sessionID(t, first))))

	now = now.Add(time.Minute)
	store.Get(newStoreContext(""))

	assert.Equal(t, 2, store.Len())
	assert.NotNil(t, store.Lookup(newStoreContext(sessionID(t, first))))
	assert.Nil(t, store.Lookup(newStoreContext(sessionID(t, second))))
}

func TestCookielessPageViewsDoNotGrowSessions(t *testing.T) {
	cfg := config.Default()
	srv := NewServer(cfg, newSource())

	for i := 0; i < 50; i++ {
		(&browser{t: t, handler: srv.Handler()}).get("/")
		(&browser{t: t, handler: srv.Handler()}).post("/back", nil)
	}

	assert.Equal(t, 0, srv.sessions.Len())
}
