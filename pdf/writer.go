package pdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Document accumulates indirect objects and writes a PDF 1.7 file with a
// classic cross-reference table.
type Document struct {
	objects []Object // index i holds object number i+1
	catalog Ref
	info    Dict
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{info: Dict{"Producer": String("resumepdf")}}
}

// Alloc reserves an object number that will be filled in later with Set.
func (d *Document) Alloc() Ref {
	d.objects = append(d.objects, nil)
	return Ref{Num: len(d.objects)}
}

// Set assigns the object for a previously allocated reference.
func (d *Document) Set(ref Ref, obj Object) {
	d.objects[ref.Num-1] = obj
}

// Add appends an object and returns its reference.
func (d *Document) Add(obj Object) Ref {
	ref := d.Alloc()
	d.Set(ref, obj)
	return ref
}

// SetCatalog designates the document catalog object.
func (d *Document) SetCatalog(ref Ref) { d.catalog = ref }

// SetInfoEntry adds a document information entry such as Title.
func (d *Document) SetInfoEntry(key Name, value string) {
	d.info[key] = String(value)
}

// SetCreationDate records the creation timestamp in PDF date syntax.
func (d *Document) SetCreationDate(t time.Time) {
	d.info["CreationDate"] = String(t.UTC().Format("D:20060102150405Z"))
}

// WriteTo serializes the document: header, body, xref table, and trailer.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d.catalog.Num == 0 {
		return 0, errors.New("document has no catalog")
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	// The Info dict is serialized as the trailing object without touching
	// d.objects, so WriteTo can be called repeatedly with identical output.
	infoRef := Ref{Num: len(d.objects) + 1}

	offsets := make([]int, 0, len(d.objects)+1)
	for i, obj := range d.objects {
		if obj == nil {
			return 0, errors.Errorf("object %d allocated but never set", i+1)
		}
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		obj.writeTo(&buf)
		buf.WriteString("\nendobj\n")
	}
	offsets = append(offsets, buf.Len())
	fmt.Fprintf(&buf, "%d 0 obj\n", infoRef.Num)
	d.info.writeTo(&buf)
	buf.WriteString("\nendobj\n")

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	buf.WriteString("trailer\n")
	trailer := Dict{
		"Size": Integer(len(offsets) + 1),
		"Root": d.catalog,
		"Info": infoRef,
	}
	trailer.writeTo(&buf)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
