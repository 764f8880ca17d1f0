package driver

import (
	"path/filepath"
	"testing"

	"github.com/t14raptor/fastscope/config"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/source"
)

func TestPathResolver(t *testing.T) {
	root := t.TempDir()
	files := source.NewFileSet()
	names := []string{
		"src/main.js.json",
		"src/util.json",
		"src/lib/index.json",
		"src/caf\u00e9.js.json",
		"vendor/left-pad.json",
		"shared/ui/button.mjs.json",
	}
	ids := make(map[string]source.FileID, len(names))
	var list []source.FileID
	for _, name := range names {
		id := files.Add(filepath.Join(root, filepath.FromSlash(name)), nil)
		ids[name] = id
		list = append(list, id)
	}

	p, err := newPathResolver(files, list, config.ModulesConfig{
		Root:    filepath.Join(root, "vendor"),
		Aliases: map[string]string{"@ui/": "../shared/ui", "@": "../src"},
	})
	if err != nil {
		t.Fatal(err)
	}

	main := ids["src/main.js.json"]
	tests := []struct {
		spec string
		want string
	}{
		{"./util", "src/util.json"},
		{"./util.json", "src/util.json"},
		{"./main.js", "src/main.js.json"},
		{"./lib", "src/lib/index.json"},
		{"./cafe\u0301.js", "src/caf\u00e9.js.json"},
		{"../vendor/left-pad", "vendor/left-pad.json"},
		{"left-pad", "vendor/left-pad.json"},
		{"@ui/button", "shared/ui/button.mjs.json"},
		{"@/util", "src/util.json"},
		{"./nope", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, ok := p.ResolveDependency(main, tt.spec, resolver.DependencyImport)
			if tt.want == "" {
				if ok {
					t.Errorf("got %v, want no file", got)
				}
				return
			}
			if !ok || got != ids[tt.want] {
				t.Errorf("got %v, %t, want %s", got, ok, tt.want)
			}
		})
	}
}

func TestPathResolverFingerprint(t *testing.T) {
	root := t.TempDir()
	build := func(names ...string) string {
		files := source.NewFileSet()
		var list []source.FileID
		for _, name := range names {
			list = append(list, files.Add(filepath.Join(root, name), nil))
		}
		p, err := newPathResolver(files, list, config.ModulesConfig{Root: root})
		if err != nil {
			t.Fatal(err)
		}
		return p.Fingerprint()
	}
	if build("a.json", "b.json") != build("b.json", "a.json") {
		t.Error("fingerprint depends on input order")
	}
	if build("a.json") == build("a.json", "b.json") {
		t.Error("fingerprint ignores the input set")
	}
}
