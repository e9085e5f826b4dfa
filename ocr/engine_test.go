package ocr

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

type fakeEngine struct {
	calls []Input
	fail  bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, in Input) (Result, error) {
	f.calls = append(f.calls, in)
	if f.fail {
		return Result{}, errors.New("boom")
	}
	return Result{Page: in.Page, PlainText: "page"}, nil
}

type fakeBatchEngine struct {
	fakeEngine
	batches int
}

func (f *fakeBatchEngine) RecognizeBatch(_ context.Context, inputs []Input) ([]Result, error) {
	f.batches++
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, Result{Page: in.Page})
	}
	return results, nil
}

func TestRecognizePagesSequential(t *testing.T) {
	engine := &fakeEngine{}
	pages := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	results, err := RecognizePages(context.Background(), engine, pages, ImageFormatPNG,
		WithLanguages("eng", "deu"), WithDPI(300), WithTesseractPSM(3))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, res := range results {
		if res.Page != i {
			t.Fatalf("result %d carries page %d", i, res.Page)
		}
	}
	in := engine.calls[0]
	if len(in.Languages) != 2 || in.Languages[0] != "eng" {
		t.Fatalf("languages not applied: %v", in.Languages)
	}
	if in.DPI != 300 {
		t.Fatalf("dpi = %d", in.DPI)
	}
	if in.Variables["tessedit_pageseg_mode"] != "3" {
		t.Fatalf("psm variable missing: %v", in.Variables)
	}
}

func TestRecognizePagesPrefersBatch(t *testing.T) {
	engine := &fakeBatchEngine{}
	_, err := RecognizePages(context.Background(), engine, [][]byte{[]byte("a"), []byte("b")}, ImageFormatPNG)
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if engine.batches != 1 {
		t.Fatalf("batches = %d, want 1", engine.batches)
	}
	if len(engine.calls) != 0 {
		t.Fatal("batch engine must not fall back to single recognition")
	}
}

func TestRecognizePagesPropagatesFailure(t *testing.T) {
	engine := &fakeEngine{fail: true}
	if _, err := RecognizePages(context.Background(), engine, [][]byte{[]byte("a")}, ImageFormatPNG); err == nil {
		t.Fatal("expected engine failure to propagate")
	}
}

func TestRecognizePagesHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := &fakeEngine{}
	if _, err := RecognizePages(ctx, engine, [][]byte{[]byte("a")}, ImageFormatPNG); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNoopEngine(t *testing.T) {
	res, err := NoopEngine{}.Recognize(context.Background(), Input{Page: 4})
	if err != nil {
		t.Fatalf("noop: %v", err)
	}
	if res.Page != 4 || len(res.Words) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestFormatForExtension(t *testing.T) {
	if FormatForExtension("jpg") != ImageFormatJPEG || FormatForExtension("jpeg") != ImageFormatJPEG {
		t.Fatal("jpeg extensions must map to JPEG")
	}
	if FormatForExtension("png") != ImageFormatPNG || FormatForExtension("") != ImageFormatPNG {
		t.Fatal("png and unknown extensions must map to PNG")
	}
}

func TestBoxIsEmpty(t *testing.T) {
	if (Box{Width: 10, Height: 5}).IsEmpty() {
		t.Fatal("non-degenerate box reported empty")
	}
	if !(Box{Width: 0, Height: 5}).IsEmpty() {
		t.Fatal("zero-width box not reported empty")
	}
}
