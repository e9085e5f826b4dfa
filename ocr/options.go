package ocr

import "strconv"

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithVariable sets an engine-specific variable on the input.
func WithVariable(key, value string) InputOption {
	return func(in *Input) {
		if in.Variables == nil {
			in.Variables = make(map[string]string)
		}
		in.Variables[key] = value
	}
}

// WithTesseractPSM sets the page segmentation mode variable for Tesseract.
func WithTesseractPSM(mode int) InputOption {
	return WithVariable("tessedit_pageseg_mode", strconv.Itoa(mode))
}
