package service

import (
	"context"
	"errors"
	"time"

	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/metrics"
)

// ChannelService is the single entry point the front ends use to list channels and resolve streams
type ChannelService struct {
	fetcher  domain.DirectoryFetcher
	resolver domain.StreamResolver
	cache    *ExpiringValue[[]domain.Channel]
}

// NewChannelService caches the directory for ttl.  fetchTimeout bounds a directory fetch that is shared between
// concurrent callers.
func NewChannelService(fetcher domain.DirectoryFetcher, resolver domain.StreamResolver, ttl, fetchTimeout time.Duration) *ChannelService {
	return &ChannelService{
		fetcher:  fetcher,
		resolver: resolver,
		cache:    NewExpiringValue[[]domain.Channel](ttl, fetchTimeout),
	}
}

// Channels returns the channel directory, served from cache while it is fresh.  Any failure is logged and reported
// as an empty directory; failures are not cached so the next call tries again.
func (s *ChannelService) Channels(ctx context.Context) []domain.Channel {
	channels, outcome, err := s.cache.Get(ctx, s.fetch)
	metrics.CacheLookups.WithLabelValues(outcome).Inc()
	if err != nil {
		log.Warn("Channel directory unavailable", "error", err)
		return []domain.Channel{}
	}
	if outcome == OutcomeHit {
		log.Trace("Channel directory served from cache", "count", len(channels))
	}
	if channels == nil {
		return []domain.Channel{}
	}
	return channels
}

// Refresh discards the cached directory and fetches it again
func (s *ChannelService) Refresh(ctx context.Context) []domain.Channel {
	log.Info("Refreshing channel directory")
	s.cache.Invalidate()
	return s.Channels(ctx)
}

func (s *ChannelService) fetch(ctx context.Context) ([]domain.Channel, error) {
	log.Info("Fetching channel directory")
	channels, err := s.fetcher.FetchDirectory(ctx)
	if err != nil {
		metrics.DirectoryFetches.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}
	if len(channels) == 0 {
		metrics.DirectoryFetches.WithLabelValues(metrics.ResultEmpty).Inc()
	} else {
		metrics.DirectoryFetches.WithLabelValues(metrics.ResultSuccess).Inc()
	}
	log.Info("Fetched channel directory", "count", len(channels))
	return channels, nil
}

// Resolve turns a channel page URL into a playable media URL.  It never panics and always returns exactly one of a
// media URL or an error.
func (s *ChannelService) Resolve(ctx context.Context, channelURL string) domain.StreamResult {
	log.Info("Resolving stream", "url", channelURL)
	mediaURL, err := s.resolver.ResolveStream(ctx, channelURL)
	if err == nil && mediaURL == "" {
		err = domain.ErrServerBlocked
	}
	if err != nil {
		metrics.StreamResolutions.WithLabelValues(resultLabel(err)).Inc()
		log.Warn("Stream resolution failed", "url", channelURL, "error", err)
		return domain.StreamResult{Err: err}
	}

	metrics.StreamResolutions.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info("Stream resolved", "url", channelURL)
	log.Debug("Resolved media URL", "url", channelURL, "media_url", mediaURL)
	return domain.StreamResult{MediaURL: mediaURL}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrBlockedByProtection), errors.Is(err, domain.ErrServerBlocked):
		return metrics.ResultBlocked
	case errors.Is(err, domain.ErrIdentifierNotFound):
		return metrics.ResultMissing
	default:
		return metrics.ResultError
	}
}
