package action

import (
	"net/http"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// DefaultUserAgent identifies procflow to action endpoints.
const DefaultUserAgent = "procflow/1.0"

// buildHeaders merges the default headers with the descriptor's; descriptor values win.
func buildHeaders(userAgent string, declared []domain.Header) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("User-Agent", userAgent)
	for _, d := range declared {
		if d.Key == "" {
			continue
		}
		h.Set(d.Key, d.Value)
	}
	return h
}
