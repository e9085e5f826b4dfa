// Package ocr defines the abstraction layer for plugging OCR engines into
// the PDF pipeline. The interfaces are small and transport-agnostic so an
// engine can be backed by a native library or a remote API without leaking
// provider-specific concerns into callers.
package ocr
