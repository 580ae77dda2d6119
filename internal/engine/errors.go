package engine

import (
	"errors"

	"github.com/pagepull/pagepull/internal/extract"
)

// Failure kinds raised by Fetch. Check with errors.Is.
var (
	// ErrInvalidURL indicates a malformed scheme or host. Never retried and
	// never charged against the attempt budget.
	ErrInvalidURL = errors.New("invalid url")
	// ErrUnsupportedContentType indicates a declared type outside the
	// allow-list. Never retried.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrContentTooLarge indicates a declared or measured size over the
	// ceiling. Never retried.
	ErrContentTooLarge = errors.New("content too large")
	// ErrInvalidContent indicates a body that fails to parse as its declared
	// type. Never retried.
	ErrInvalidContent = extract.ErrInvalidContent
	// ErrTransportExhausted indicates the retry budget was consumed against
	// a transport failure, or the failure was not retriable at all. Wraps
	// the last underlying error.
	ErrTransportExhausted = errors.New("transport exhausted")
)

// IsClientError reports whether the failure originated in validation or
// content policy rather than the network. The boundary layer uses this to
// pick between client_error and network_error envelopes.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrUnsupportedContentType) ||
		errors.Is(err, ErrContentTooLarge) ||
		errors.Is(err, ErrInvalidContent)
}
