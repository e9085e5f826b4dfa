// Package resumeio fetches the rendered page images and layout metadata that
// ssr.resume.tools publishes for a resume.
package resumeio

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidID reports an input that is neither a resume identifier nor a
// resume.io URL containing one.
var ErrInvalidID = errors.New("invalid resume identifier")

// ErrNotFound reports an identifier the upstream renderer does not know.
var ErrNotFound = errors.New("resume not found upstream")

// ErrUpstream reports a renderer failure other than a missing resume.
var ErrUpstream = errors.New("upstream renderer failure")

var (
	idPattern  = regexp.MustCompile(`^[a-zA-Z0-9]{9}$`)
	urlPattern = regexp.MustCompile(`resume\.io/r/([a-zA-Z0-9]{9})`)
)

// ParseID validates a raw identifier or extracts one from a resume.io share
// URL. It returns ErrInvalidID when neither form matches.
func ParseID(raw string) (string, error) {
	if idPattern.MatchString(raw) {
		return raw, nil
	}
	if m := urlPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return "", errors.Wrap(ErrInvalidID, raw)
}

// Viewport is the page size in points as rendered upstream.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Link is a clickable region in viewport coordinates with the origin in the
// upper-left corner of the page.
type Link struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	URL    string  `json:"url"`
}

// PageMeta describes one rendered page.
type PageMeta struct {
	Viewport Viewport `json:"viewport"`
	Links    []Link   `json:"links"`
}

// Metadata is the renderer's per-resume layout document.
type Metadata struct {
	Pages []PageMeta `json:"pages"`
}

// CacheToken is the cache-busting timestamp the renderer expects on every
// request. One token must be fixed per conversion so metadata and images
// reference the same render.
type CacheToken string

// NewCacheToken returns a token for the current UTC time.
func NewCacheToken() CacheToken {
	return CacheToken(time.Now().UTC().Format("2006-01-02T15:04:05.00Z"))
}
