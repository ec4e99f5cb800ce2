package share

import (
	"context"
	"log/slog"
)

// Shortener maps a long share URL to a short one through an external service.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// PreferShort returns a short URL for longURL when s can produce one, and
// longURL otherwise. A failing or missing shortener never fails the share.
func PreferShort(ctx context.Context, s Shortener, longURL string, logger *slog.Logger) string {
	if s == nil {
		return longURL
	}
	short, err := s.Shorten(ctx, longURL)
	if err != nil || short == "" {
		if logger != nil && err != nil {
			logger.Debug("short link unavailable, using long url", "error", err)
		}
		return longURL
	}
	return short
}
