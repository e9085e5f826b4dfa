package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// TextSpan is one invisible word placed on the text layer. Coordinates are
// page points with the origin in the lower-left corner; X/Y locate the
// baseline start.
type TextSpan struct {
	Text     string
	X        float64
	Y        float64
	FontSize float64
	// HScale is the horizontal scaling percentage that stretches the glyph
	// advances to the word's box width. 100 means no scaling.
	HScale float64
}

// LinkAnnot is a clickable URI region in page coordinates.
type LinkAnnot struct {
	X1, Y1, X2, Y2 float64
	URL            string
}

// PageSpec describes one output page: a full-bleed image, an optional
// invisible text layer, and link annotations.
type PageSpec struct {
	Width  float64
	Height float64
	Image  *ImageXObject
	Text   []TextSpan
	Links  []LinkAnnot
}

// Composer assembles pages into a Document.
type Composer struct {
	doc      *Document
	pagesRef Ref
	fontRef  Ref
	pageRefs []Ref
}

// NewComposer prepares a document with the shared page tree and the core
// Helvetica font used by text layers.
func NewComposer() *Composer {
	doc := NewDocument()
	pagesRef := doc.Alloc()
	catalogRef := doc.Add(Dict{
		"Type":  Name("Catalog"),
		"Pages": pagesRef,
	})
	doc.SetCatalog(catalogRef)
	fontRef := doc.Add(Dict{
		"Type":     Name("Font"),
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Helvetica"),
		"Encoding": Name("WinAnsiEncoding"),
	})
	return &Composer{doc: doc, pagesRef: pagesRef, fontRef: fontRef}
}

// Document exposes the underlying document for Info entries.
func (c *Composer) Document() *Document { return c.doc }

// AddPage appends a page built from the spec.
func (c *Composer) AddPage(spec PageSpec) error {
	if spec.Width <= 0 || spec.Height <= 0 {
		return errors.Errorf("invalid page size %gx%g", spec.Width, spec.Height)
	}
	if spec.Image == nil {
		return errors.New("page has no image")
	}
	imgRef := spec.Image.add(c.doc)
	contentRef := c.doc.Add(&Stream{
		Dict: Dict{"Filter": Name("FlateDecode")},
		Data: flateEncode(c.contentStream(spec)),
	})

	page := Dict{
		"Type":     Name("Page"),
		"Parent":   c.pagesRef,
		"MediaBox": Rect(0, 0, spec.Width, spec.Height),
		"Contents": contentRef,
		"Resources": Dict{
			"XObject": Dict{"Im0": imgRef},
			"Font":    Dict{"F1": c.fontRef},
		},
	}
	if len(spec.Links) > 0 {
		annots := make(Array, 0, len(spec.Links))
		for _, link := range spec.Links {
			annots = append(annots, c.doc.Add(Dict{
				"Type":    Name("Annot"),
				"Subtype": Name("Link"),
				"Rect":    Rect(link.X1, link.Y1, link.X2, link.Y2),
				"Border":  Array{Integer(0), Integer(0), Integer(0)},
				"A": Dict{
					"S":   Name("URI"),
					"URI": String(link.URL),
				},
			}))
		}
		page["Annots"] = annots
	}
	c.pageRefs = append(c.pageRefs, c.doc.Add(page))
	return nil
}

// contentStream paints the image across the full media box, then the
// invisible text layer in render mode 3.
func (c *Composer) contentStream(spec PageSpec) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "q\n%s 0 0 %s 0 0 cm\n/Im0 Do\nQ\n",
		formatReal(spec.Width), formatReal(spec.Height))
	if len(spec.Text) == 0 {
		return buf.Bytes()
	}
	buf.WriteString("BT\n3 Tr\n")
	for _, span := range spec.Text {
		hscale := span.HScale
		if hscale <= 0 {
			hscale = 100
		}
		fmt.Fprintf(&buf, "/F1 %s Tf\n%s Tz\n1 0 0 1 %s %s Tm\n",
			formatReal(span.FontSize), formatReal(hscale),
			formatReal(span.X), formatReal(span.Y))
		String(encodeText(span.Text)).writeTo(&buf)
		buf.WriteString(" Tj\n")
	}
	buf.WriteString("ET\n")
	return buf.Bytes()
}

// WriteTo finalizes the page tree and writes the PDF.
func (c *Composer) WriteTo(w io.Writer) (int64, error) {
	if len(c.pageRefs) == 0 {
		return 0, errors.New("document has no pages")
	}
	kids := make(Array, 0, len(c.pageRefs))
	for _, ref := range c.pageRefs {
		kids = append(kids, ref)
	}
	c.doc.Set(c.pagesRef, Dict{
		"Type":  Name("Pages"),
		"Kids":  kids,
		"Count": Integer(len(c.pageRefs)),
	})
	return c.doc.WriteTo(w)
}
