package pdf

import (
	"bytes"
	"testing"
)

func TestStringWidth(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"i", 222},
		{"W", 944},
		{"Hello", 722 + 556 + 222 + 222 + 556},
		{"日", helveticaDefaultWidth},
	}
	for _, tc := range cases {
		if got := StringWidth(tc.in); got != tc.want {
			t.Fatalf("StringWidth(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestStringWidthMonotonicOverConcat(t *testing.T) {
	if StringWidth("ab") != StringWidth("a")+StringWidth("b") {
		t.Fatal("width must be additive over concatenation")
	}
}

func TestEncodeText(t *testing.T) {
	if got := encodeText("plain"); !bytes.Equal(got, []byte("plain")) {
		t.Fatalf("ascii mangled: %q", got)
	}
	// Latin-1 range passes through as single bytes.
	if got := encodeText("café"); !bytes.Equal(got, []byte{'c', 'a', 'f', 0xe9}) {
		t.Fatalf("latin-1 = %v", got)
	}
	// Anything wider degrades to a placeholder, never multi-byte output.
	if got := encodeText("日本"); !bytes.Equal(got, []byte("??")) {
		t.Fatalf("wide runes = %q", got)
	}
}
