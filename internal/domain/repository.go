package domain

import "context"

// DirectoryFetcher retrieves the channel directory from the provider
type DirectoryFetcher interface {
	// FetchDirectory scrapes the provider's homepage.  Errors are returned to the caller; deciding whether a failure
	// becomes an empty directory is the caller's business.
	FetchDirectory(ctx context.Context) ([]Channel, error)
}

// StreamResolver turns a channel detail page into a playable media URL
type StreamResolver interface {
	// ResolveStream performs the page fetch + AJAX exchange for a single channel page
	ResolveStream(ctx context.Context, channelURL string) (string, error)
}
