package web

import (
	"context"
	"net/http"
	"time"

	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	PageTitle    = "TV Romania Direct"
	EmptyMessage = "Could not load channels. Site might be down."
)

// requestTimeout bounds the upstream work done for a single browser request
const requestTimeout = 45 * time.Second

// ChannelSource is the part of the channel service the web UI depends on
type ChannelSource interface {
	Channels(ctx context.Context) []domain.Channel
	Resolve(ctx context.Context, channelURL string) domain.StreamResult
}

// Handler serves the browser UI and the JSON API
type Handler struct {
	source     ChannelSource
	sessions   *SessionStore
	columns    int
	labelWidth int
}

func NewHandler(source ChannelSource, sessions *SessionStore, columns, labelWidth int) *Handler {
	if columns < 1 {
		columns = 3
	}
	if labelWidth < 1 {
		labelWidth = 15
	}
	return &Handler{source: source, sessions: sessions, columns: columns, labelWidth: labelWidth}
}

type card struct {
	domain.Channel
	Label string
}

type pageData struct {
	Title        string
	Columns      int
	EmptyMessage string
	Rows         [][]card

	Player      bool
	ChannelName string
	MediaURL    string
	Error       string
}

// Index renders the grid or the player, depending on the browser's session
func (h *Handler) Index(c *gin.Context) {
	state := h.sessions.Lookup(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	data := pageData{Title: PageTitle, Columns: h.columns, EmptyMessage: EmptyMessage}

	if state != nil && state.View() == session.ViewPlayer {
		url, name, _ := state.Selected()
		data.Player = true
		data.ChannelName = name
		result := h.source.Resolve(ctx, url)
		if result.OK() {
			data.MediaURL = result.MediaURL
		} else {
			data.Error = result.Message()
		}
	} else {
		data.Rows = h.rows(h.source.Channels(ctx))
	}

	c.HTML(http.StatusOK, "page", data)
}

// rows chunks channels into rows of h.columns cards, the last row may be shorter
func (h *Handler) rows(channels []domain.Channel) [][]card {
	var rows [][]card
	for start := 0; start < len(channels); start += h.columns {
		end := min(start+h.columns, len(channels))
		row := make([]card, 0, end-start)
		for _, ch := range channels[start:end] {
			row = append(row, card{Channel: ch, Label: label(ch.Name, h.labelWidth)})
		}
		rows = append(rows, row)
	}
	return rows
}

// label keeps the first n characters of a channel name
func label(name string, n int) string {
	r := []rune(name)
	if len(r) <= n {
		return name
	}
	return string(r[:n])
}

// Select records the channel chosen from the grid
func (h *Handler) Select(c *gin.Context) {
	ch := domain.Channel{Name: c.PostForm("name"), URL: c.PostForm("url")}
	if ch.Name == "" {
		ch.Name = domain.PlaceholderChannelName
	}
	if ch.URL == "" {
		respondError(c, http.StatusBadRequest, session.ErrEmptySelection.Error())
		return
	}

	if err := h.sessions.Get(c).Select(ch); err != nil {
		log.Warn("Rejected channel selection", "error", err)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	log.Info("Channel selected", "name", ch.Name, "url", ch.URL)
	c.Redirect(http.StatusSeeOther, "/")
}

// Back returns the browser to the grid
func (h *Handler) Back(c *gin.Context) {
	if state := h.sessions.Lookup(c); state != nil {
		state.Back()
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Channels returns the directory as JSON
func (h *Handler) Channels(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	c.JSON(http.StatusOK, h.source.Channels(ctx))
}

// Stream resolves ?url= and returns the media URL as JSON
func (h *Handler) Stream(c *gin.Context) {
	channelURL := c.Query("url")
	if channelURL == "" {
		respondError(c, http.StatusBadRequest, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	result := h.source.Resolve(ctx, channelURL)
	if !result.OK() {
		respondError(c, http.StatusBadGateway, result.Message())
		return
	}
	c.JSON(http.StatusOK, gin.H{"media_url": result.MediaURL})
}

// respondError writes the error in a uniform JSON shape and stops the handler chain
func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
