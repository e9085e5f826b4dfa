package resumeio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/resumepdf/httpx"
)

// DefaultBaseURL is the production renderer endpoint.
const DefaultBaseURL = "https://ssr.resume.tools"

// ImageOptions control how page images are requested.
type ImageOptions struct {
	// Extension is the image format, png by default.
	Extension string
	// Size is the longest-edge pixel size, 1800 by default.
	Size int
	// Concurrency bounds parallel page downloads, 4 by default.
	Concurrency int
}

func (o ImageOptions) withDefaults() ImageOptions {
	if o.Extension == "" {
		o.Extension = "png"
	}
	if o.Size <= 0 {
		o.Size = 1800
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return o
}

// Client talks to the resume renderer.
type Client struct {
	BaseURL string
	HTTP    httpx.BasicClient
}

// NewClient returns a Client against the production renderer.
func NewClient(h httpx.BasicClient) *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTP: h}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		// A canceled download is the caller's doing, not an upstream failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Wrapf(ErrUpstream, "unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	return body, nil
}

// Metadata fetches the layout document for a resume.
func (c *Client) Metadata(ctx context.Context, id string, token CacheToken) (*Metadata, error) {
	url := fmt.Sprintf("%s/meta/ssid-%s?cache=%s", c.BaseURL, id, token)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, errors.Wrap(ErrUpstream, "decoding metadata: "+err.Error())
	}
	if len(meta.Pages) == 0 {
		return nil, errors.Wrap(ErrUpstream, "metadata lists no pages")
	}
	return &meta, nil
}

// PageImage fetches the rendered image of a single page. Pages are numbered
// from 1, matching the renderer.
func (c *Client) PageImage(ctx context.Context, id string, page int, token CacheToken, opts ImageOptions) ([]byte, error) {
	opts = opts.withDefaults()
	url := fmt.Sprintf("%s/to-image/ssid-%s-%d.%s?cache=%s&size=%d",
		c.BaseURL, id, page, opts.Extension, token, opts.Size)
	return c.get(ctx, url)
}

// PageImages downloads all page images concurrently and returns them in page
// order. The page count comes from the metadata.
func (c *Client) PageImages(ctx context.Context, id string, meta *Metadata, token CacheToken, opts ImageOptions) ([][]byte, error) {
	opts = opts.withDefaults()
	images := make([][]byte, len(meta.Pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range meta.Pages {
		g.Go(func() error {
			img, err := c.PageImage(gctx, id, i+1, token, opts)
			if err != nil {
				return errors.Wrapf(err, "page %d", i+1)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
