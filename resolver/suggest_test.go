package resolver

import "testing"

func TestClosestMatch(t *testing.T) {
	tests := []struct {
		target     string
		candidates []string
		want       string
		ok         bool
	}{
		{"cont", []string{"count", "total"}, "count", true},
		{"lenght", []string{"length", "width"}, "length", true},
		{"x", []string{"x"}, "", false},
		{"ab", []string{"zzzz"}, "", false},
		{"usr", []string{"currentUser", "config"}, "currentUser", true},
		{"nothing", []string{"a", "b"}, "", false},
	}
	for _, tt := range tests {
		got, ok := closestMatch(tt.target, tt.candidates)
		if got != tt.want || ok != tt.ok {
			t.Errorf("closestMatch(%q): got %q, %t, want %q, %t", tt.target, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBindingTableShadowing(t *testing.T) {
	var tbl bindingTable
	tbl.push()
	tbl.insert(1, binding{decl: 1})
	inner := tbl.push()
	tbl.insert(1, binding{decl: 2})

	if b, _ := tbl.find(1); b.decl != 2 {
		t.Fatalf("got decl %d, want the inner 2", b.decl)
	}
	tbl.insertAt(inner-1, 3, binding{decl: 4})
	tbl.pop()
	if b, _ := tbl.find(1); b.decl != 1 {
		t.Errorf("got decl %d after pop, want 1", b.decl)
	}
	if b, ok := tbl.find(3); !ok || b.decl != 4 {
		t.Errorf("got %v, %t, want the outer insert", b, ok)
	}
	if _, ok := tbl.find(9); ok {
		t.Error("found an unbound name")
	}
}
