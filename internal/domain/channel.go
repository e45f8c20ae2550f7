package domain

// PlaceholderChannelName is used when a grid item carries neither a title nor an image alt text
const PlaceholderChannelName = "Channel"

// Channel is a single entry of the broadcaster's channel directory
type Channel struct {
	Name string `json:"name"`
	// URL is absolute and points at the channel detail page on the provider's site
	URL string `json:"url"`
	// Logo is an absolute image URL
	Logo string `json:"logo"`
}

// StreamResult is the outcome of resolving a channel page into a playable media URL.  Exactly one of MediaURL and
// Err is set.
type StreamResult struct {
	MediaURL string
	Err      error
}

// OK reports whether the resolution produced a media URL
func (r StreamResult) OK() bool {
	return r.Err == nil && r.MediaURL != ""
}

// Message returns the user-facing error text, or an empty string on success
func (r StreamResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return UserMessage(r.Err)
}
