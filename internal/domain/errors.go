package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIdentifierNotFound is returned when a channel page does not contain the postID declaration.  Usually the page
	// was replaced by something else, anti-bot middleware being the common culprit.
	ErrIdentifierNotFound = errors.New("could not find channel ID (the page may be behind anti-bot protection)")

	// ErrBlockedByProtection is returned when the provider answered with a recognisable challenge page
	ErrBlockedByProtection = errors.New("blocked by the site's anti-bot protection")

	// ErrServerBlocked is returned when the AJAX endpoint refuses, or answers with something that is not a stream
	ErrServerBlocked = errors.New("server blocked the video request")
)

// StatusError is returned when the provider answers with a non-2xx HTTP status
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// UserMessage converts an error from the scraping layer into the text shown to a user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrServerBlocked):
		return ErrServerBlocked.Error()
	case errors.Is(err, ErrBlockedByProtection):
		return ErrBlockedByProtection.Error()
	case errors.Is(err, ErrIdentifierNotFound):
		return ErrIdentifierNotFound.Error()
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("the site answered with HTTP %d", statusErr.Code)
	}

	return err.Error()
}
