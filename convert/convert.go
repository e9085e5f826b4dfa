// Package convert orchestrates the conversion pipeline: fetch the rendered
// page images and layout metadata, recognize the text on each page, and
// compose the output PDF.
package convert

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/wudi/resumepdf/ctxlog"
	"github.com/wudi/resumepdf/ocr"
	"github.com/wudi/resumepdf/pdf"
	"github.com/wudi/resumepdf/resumeio"
)

// Options control a single conversion.
type Options struct {
	// Searchable adds the invisible OCR text layer.
	Searchable bool
	// Extension is the page image format requested upstream (png or jpeg).
	Extension string
	// ImageSize is the longest-edge pixel size requested upstream.
	ImageSize int
	// Languages are traineddata hints for the OCR engine.
	Languages []string
	// MinConfidence drops recognized words below this confidence (0..1) from
	// the text layer.
	MinConfidence float64
	// Concurrency bounds parallel page downloads.
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.Extension == "" {
		o.Extension = "png"
	}
	if o.ImageSize <= 0 {
		o.ImageSize = 1800
	}
	if len(o.Languages) == 0 {
		o.Languages = []string{"eng"}
	}
	return o
}

// Converter runs conversions against an upstream client and an OCR engine.
type Converter struct {
	Client *resumeio.Client
	Engine ocr.Engine
}

// New returns a Converter.
func New(client *resumeio.Client, engine ocr.Engine) *Converter {
	return &Converter{Client: client, Engine: engine}
}

// Convert produces the PDF for a validated resume identifier.
func (c *Converter) Convert(ctx context.Context, id string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	log := ctxlog.FromContext(ctx).With("resume", id)
	start := time.Now()

	// One cache token for the whole conversion so metadata and images
	// reference the same upstream render.
	token := resumeio.NewCacheToken()

	meta, err := c.Client.Metadata(ctx, id, token)
	if err != nil {
		return nil, err
	}
	imgOpts := resumeio.ImageOptions{
		Extension:   opts.Extension,
		Size:        opts.ImageSize,
		Concurrency: opts.Concurrency,
	}
	images, err := c.Client.PageImages(ctx, id, meta, token, imgOpts)
	if err != nil {
		return nil, err
	}

	var results []ocr.Result
	if opts.Searchable {
		engine := c.Engine
		if engine == nil {
			engine = ocr.NoopEngine{}
		}
		results, err = ocr.RecognizePages(ctx, engine, images,
			ocr.FormatForExtension(opts.Extension),
			ocr.WithLanguages(opts.Languages...))
		if err != nil {
			return nil, errors.Wrap(err, "ocr")
		}
	}

	composer := pdf.NewComposer()
	composer.Document().SetInfoEntry("Title", "Resume "+id)
	composer.Document().SetCreationDate(start)

	for i, page := range meta.Pages {
		img, err := pdf.DecodeImage(images[i])
		if err != nil {
			return nil, errors.Wrapf(err, "page %d", i+1)
		}
		spec := pdf.PageSpec{
			Width:  page.Viewport.Width,
			Height: page.Viewport.Height,
			Image:  img,
			Links:  layoutLinks(page),
		}
		if results != nil {
			spec.Text = layoutWords(results[i].Words, img.Width, img.Height, page.Viewport, opts.MinConfidence)
		}
		if err := composer.AddPage(spec); err != nil {
			return nil, errors.Wrapf(err, "page %d", i+1)
		}
	}

	var buf bytes.Buffer
	if _, err := composer.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	log.Info("conversion finished",
		"pages", len(meta.Pages),
		"searchable", opts.Searchable,
		"bytes", buf.Len(),
		"duration", time.Since(start))
	return buf.Bytes(), nil
}
