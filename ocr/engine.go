package ocr

import (
	"context"

	"github.com/pkg/errors"
)

// RecognizePages builds inputs from encoded page images and invokes the
// engine. If the engine supports batch operation it is used; otherwise pages
// are processed sequentially. Results are returned in page order.
func RecognizePages(ctx context.Context, engine Engine, pages [][]byte, format ImageFormat, opts ...InputOption) ([]Result, error) {
	inputs := make([]Input, 0, len(pages))
	for i, img := range pages {
		in := Input{Image: img, Format: format, Page: i}
		for _, opt := range opts {
			opt(&in)
		}
		inputs = append(inputs, in)
	}
	if b, ok := engine.(BatchEngine); ok {
		results, err := b.RecognizeBatch(ctx, inputs)
		if err != nil {
			return nil, err
		}
		if len(results) != len(inputs) {
			return nil, errors.Errorf("engine %s returned %d results for %d pages", engine.Name(), len(results), len(inputs))
		}
		return results, nil
	}
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, errors.Wrapf(err, "recognize page %d", in.Page)
		}
		results = append(results, res)
	}
	return results, nil
}

// NoopEngine recognizes nothing. It backs flat conversions and tests.
type NoopEngine struct{}

func (NoopEngine) Name() string { return "noop" }

func (NoopEngine) Recognize(_ context.Context, input Input) (Result, error) {
	return Result{Page: input.Page}, nil
}
