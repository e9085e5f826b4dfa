package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is any value serializable into PDF syntax.
type Object interface {
	writeTo(buf *bytes.Buffer)
}

// Name is a PDF name object (written with a leading slash).
type Name string

func (n Name) writeTo(buf *bytes.Buffer) {
	buf.WriteByte('/')
	buf.WriteString(string(n))
}

// Integer is a PDF integer.
type Integer int64

func (i Integer) writeTo(buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatInt(int64(i), 10))
}

// Real is a PDF real number, written with a fixed precision.
type Real float64

func (r Real) writeTo(buf *bytes.Buffer) {
	buf.WriteString(formatReal(float64(r)))
}

// Bool is a PDF boolean.
type Bool bool

func (b Bool) writeTo(buf *bytes.Buffer) {
	if b {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
}

// String is a PDF literal string. Serialization escapes delimiters and
// non-printable bytes.
type String []byte

func (s String) writeTo(buf *bytes.Buffer) {
	buf.WriteByte('(')
	for _, c := range s {
		switch {
		case c == '(' || c == ')' || c == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(buf, "\\%03o", c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

// Array is a PDF array.
type Array []Object

func (a Array) writeTo(buf *bytes.Buffer) {
	buf.WriteByte('[')
	for i, o := range a {
		if i > 0 {
			buf.WriteByte(' ')
		}
		o.writeTo(buf)
	}
	buf.WriteByte(']')
}

// Dict is a PDF dictionary. Keys are serialized in sorted order so output is
// deterministic.
type Dict map[Name]Object

func (d Dict) writeTo(buf *bytes.Buffer) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	buf.WriteString("<<")
	for _, k := range keys {
		buf.WriteByte('/')
		buf.WriteString(k)
		buf.WriteByte(' ')
		d[Name(k)].writeTo(buf)
		buf.WriteByte(' ')
	}
	buf.WriteString(">>")
}

// Stream is a PDF stream. Data is written verbatim; the dictionary receives
// the Length entry automatically.
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) writeTo(buf *bytes.Buffer) {
	d := Dict{}
	for k, v := range s.Dict {
		d[k] = v
	}
	d["Length"] = Integer(len(s.Data))
	d.writeTo(buf)
	buf.WriteString("\nstream\n")
	buf.Write(s.Data)
	buf.WriteString("\nendstream")
}

// Ref is an indirect object reference.
type Ref struct {
	Num int
	Gen int
}

func (r Ref) writeTo(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "%d %d R", r.Num, r.Gen)
}

// Rect builds the four-element array PDF uses for rectangles.
func Rect(llx, lly, urx, ury float64) Array {
	return Array{Real(llx), Real(lly), Real(urx), Real(ury)}
}

// formatReal trims a float to a compact fixed-point representation.
func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = trimTrailingZeros(s)
	if s == "-0" {
		return "0"
	}
	return s
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
