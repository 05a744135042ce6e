package instagram

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog"
)

var (
	// ErrBadURL means no shortcode could be extracted from the input.
	ErrBadURL = errors.New("invalid instagram url")
	// ErrUnavailable covers every provider-side failure: private post,
	// deleted post, network error. The cause is only logged.
	ErrUnavailable = errors.New("media unavailable")
)

var (
	validURLPattern  = regexp.MustCompile(`^https?://(www\.)?instagram\.com/(p|reel|tv)/`)
	shortcodePattern = regexp.MustCompile(`instagram\.com/(?:p|reel|tv)/([^/?#&]+)`)
)

// IsValidURL reports whether the input matches the accepted post, reel
// or IGTV URL shape.
func IsValidURL(raw string) bool {
	return validURLPattern.MatchString(raw)
}

// ExtractShortcode returns the path segment following p/reel/tv, up to
// the next separator, or "" when the URL carries none.
func ExtractShortcode(raw string) string {
	match := shortcodePattern.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}
	return match[1]
}

type PostFetcher interface {
	PostByShortcode(ctx context.Context, shortcode string) (*Post, error)
}

type Resolver struct {
	fetcher PostFetcher
	logger  zerolog.Logger
}

func NewResolver(fetcher PostFetcher, logger zerolog.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve maps a post URL to its direct media URL: the video URL when
// the post is a video, the image URL otherwise.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	shortcode := ExtractShortcode(raw)
	if shortcode == "" {
		return "", ErrBadURL
	}

	post, err := r.fetcher.PostByShortcode(ctx, shortcode)
	if err != nil {
		r.logger.Error().Err(err).Str("shortcode", shortcode).Msg("fetch instagram post")
		return "", ErrUnavailable
	}

	if post.IsVideo && post.VideoURL != "" {
		return post.VideoURL, nil
	}
	if post.DisplayURL == "" {
		r.logger.Error().Str("shortcode", shortcode).Msg("post resolved without media url")
		return "", ErrUnavailable
	}
	return post.DisplayURL, nil
}
