package convert

import (
	"github.com/wudi/resumepdf/ocr"
	"github.com/wudi/resumepdf/pdf"
	"github.com/wudi/resumepdf/resumeio"
)

// layoutWords maps OCR word boxes from image pixels (top-left origin) into
// page points (bottom-left origin) and derives the font size and horizontal
// scaling that stretch each word across its box.
func layoutWords(words []ocr.Word, imgW, imgH int, vp resumeio.Viewport, minConfidence float64) []pdf.TextSpan {
	if imgW <= 0 || imgH <= 0 {
		return nil
	}
	sx := vp.Width / float64(imgW)
	sy := vp.Height / float64(imgH)
	spans := make([]pdf.TextSpan, 0, len(words))
	for _, w := range words {
		if w.Text == "" || w.Box.IsEmpty() {
			continue
		}
		if minConfidence > 0 && w.Confidence < minConfidence {
			continue
		}
		fontSize := w.Box.Height * sy
		if fontSize <= 0 {
			continue
		}
		targetWidth := w.Box.Width * sx
		naturalWidth := float64(pdf.StringWidth(w.Text)) / 1000 * fontSize
		hscale := 100.0
		if naturalWidth > 0 {
			hscale = targetWidth / naturalWidth * 100
		}
		spans = append(spans, pdf.TextSpan{
			Text:     w.Text,
			X:        w.Box.X * sx,
			Y:        vp.Height - (w.Box.Y+w.Box.Height)*sy,
			FontSize: fontSize,
			HScale:   hscale,
		})
	}
	return spans
}

// layoutLinks converts metadata link rectangles (top-left origin) into PDF
// annotation rectangles (bottom-left origin).
func layoutLinks(page resumeio.PageMeta) []pdf.LinkAnnot {
	links := make([]pdf.LinkAnnot, 0, len(page.Links))
	for _, l := range page.Links {
		if l.URL == "" || l.Width <= 0 || l.Height <= 0 {
			continue
		}
		links = append(links, pdf.LinkAnnot{
			X1:  l.Left,
			Y1:  page.Viewport.Height - (l.Top + l.Height),
			X2:  l.Left + l.Width,
			Y2:  page.Viewport.Height - l.Top,
			URL: l.URL,
		})
	}
	return links
}
