// Package tesseract implements the ocr.Engine contract on top of the
// gosseract bindings to the system Tesseract/Leptonica libraries.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"

	"github.com/wudi/resumepdf/ocr"
)

// Engine implements ocr.Engine and ocr.BatchEngine using gosseract.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed OCR engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single page image.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	c := e.clientFactory()
	defer c.Close()
	return recognizeWithClient(ctx, c, in)
}

// RecognizeBatch processes pages sequentially on a single client instance to
// amortize engine initialization across a document.
func (e *Engine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	c := e.clientFactory()
	defer c.Close()
	results := make([]ocr.Result, 0, len(inputs))
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := recognizeWithClient(ctx, c, in)
		if err != nil {
			return nil, errors.Wrapf(err, "recognize page %d", in.Page)
		}
		results = append(results, res)
	}
	return results, nil
}

func recognizeWithClient(_ context.Context, c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, errors.Wrap(err, "set image")
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, errors.Wrap(err, "set languages")
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, errors.Wrap(err, "set dpi")
		}
	}
	for k, v := range in.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, errors.Wrapf(err, "set variable %s", k)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, errors.Wrap(err, "recognize text")
	}
	return ocr.Result{
		Page:      in.Page,
		PlainText: strings.TrimSpace(text),
		Words:     extractWords(c),
	}, nil
}

func extractWords(c *gosseract.Client) []ocr.Word {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		words = append(words, ocr.Word{
			Text:       word,
			Box:        ocr.Box{X: float64(b.Box.Min.X), Y: float64(b.Box.Min.Y), Width: float64(b.Box.Dx()), Height: float64(b.Box.Dy())},
			Confidence: b.Confidence / 100.0,
		})
	}
	return words
}
