package source

import "testing"

func TestPosition(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("a.js", []byte("var x;\nlet y;\n\nz"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{4, LineCol{1, 5}},
		{6, LineCol{1, 7}},
		{7, LineCol{2, 1}},
		{11, LineCol{2, 5}},
		{15, LineCol{4, 1}},
	}
	for _, tt := range tests {
		got, _ := fs.Position(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Errorf("offset %d: got %v, want %v", tt.off, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.Add("a.js", []byte("one\ntwo\nthree")))
	for i, want := range []string{"one", "two", "three", ""} {
		if got := f.Line(uint32(i + 1)); got != want {
			t.Errorf("line %d: got %q, want %q", i+1, got, want)
		}
	}
}

func TestLookupLatest(t *testing.T) {
	fs := NewFileSet()
	fs.Add("./dir/a.js", nil)
	second := fs.Add("dir/a.js", nil)
	got, ok := fs.Lookup("dir//a.js")
	if !ok || got != second {
		t.Fatalf("got %d %v, want %d", got, ok, second)
	}
	if fs.Len() != 2 {
		t.Errorf("got %d files, want 2", fs.Len())
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 5, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Errorf("got %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Errorf("cross-file cover changed span: %v", got)
	}
}
