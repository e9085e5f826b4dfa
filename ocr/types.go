package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// FormatForExtension maps a file extension to an ImageFormat. Unknown
// extensions default to PNG.
func FormatForExtension(ext string) ImageFormat {
	switch ext {
	case "jpg", "jpeg":
		return ImageFormatJPEG
	default:
		return ImageFormatPNG
	}
}

// Box is a rectangle in pixel coordinates with the origin in the upper-left
// corner of the image.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the box has non-positive dimensions.
func (b Box) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Input encapsulates a single page image submitted for OCR.
type Input struct {
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type.
	Format ImageFormat
	// Page is the zero-based index of the page the image renders.
	Page int
	// DPI carries the effective dots-per-inch for the image. Engines use this
	// for scaling and layout heuristics; zero means unknown.
	DPI int
	// Languages lists traineddata hints (e.g. "eng") for the engine.
	Languages []string
	// Variables passes through engine-specific knobs (e.g. Tesseract's
	// "tessedit_pageseg_mode") without hard-coding them into the API surface.
	Variables map[string]string
}

// Word is a single recognized token with its bounding box.
type Word struct {
	Text       string
	Box        Box
	Confidence float64
}

// Result captures OCR output for a single input image.
type Result struct {
	// Page mirrors the Input.Page that produced this result.
	Page int
	// PlainText contains the linearized text extracted from the image.
	PlainText string
	// Words carries the recognized tokens with positional metadata, in
	// reading order.
	Words []Word
}

// Engine is the simplest OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine handles multiple images in a single call, enabling providers
// that amortize setup costs across pages.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}
