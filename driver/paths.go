package driver

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/t14raptor/fastscope/config"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/source"
)

// probeSuffixes are tried in order after a specifier's resolved path.
var probeSuffixes = []string{
	"",
	".json",
	".js.json",
	".mjs.json",
	".cjs.json",
	"/index.json",
	"/index.js.json",
}

type alias struct {
	prefix string
	dir    string
}

// pathResolver maps specifiers to the input files of a run. Relative and
// absolute specifiers are taken from the importing file's directory;
// aliased and bare ones from the modules root. It is read-only after
// construction and shared by every resolving goroutine.
type pathResolver struct {
	byPath  map[string]source.FileID
	paths   map[source.FileID]string
	root    string
	aliases []alias
	digest  string
}

var _ resolver.DependencyResolver = (*pathResolver)(nil)

func newPathResolver(files *source.FileSet, ids []source.FileID, mods config.ModulesConfig) (*pathResolver, error) {
	root, err := filepath.Abs(cmp.Or(mods.Root, "."))
	if err != nil {
		return nil, fmt.Errorf("modules root: %w", err)
	}
	p := &pathResolver{
		byPath: make(map[string]source.FileID, len(ids)),
		paths:  make(map[source.FileID]string, len(ids)),
		root:   root,
	}
	for _, id := range ids {
		abs, err := filepath.Abs(filepath.FromSlash(files.Get(id).Path))
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", files.Get(id).Path, err)
		}
		p.byPath[canonicalPath(abs)] = id
		p.paths[id] = abs
	}
	for prefix, dir := range mods.Aliases {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		p.aliases = append(p.aliases, alias{prefix: norm.NFC.String(prefix), dir: dir})
	}
	// longest prefix wins
	slices.SortFunc(p.aliases, func(a, b alias) int {
		return cmp.Or(cmp.Compare(len(b.prefix), len(a.prefix)), cmp.Compare(a.prefix, b.prefix))
	})

	h := sha256.New()
	fmt.Fprintf(h, "root=%s\n", root)
	for _, a := range p.aliases {
		fmt.Fprintf(h, "alias=%s=%s\n", a.prefix, a.dir)
	}
	paths := make([]string, 0, len(p.byPath))
	for path := range p.byPath {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		fmt.Fprintf(h, "file=%s\n", path)
	}
	p.digest = hex.EncodeToString(h.Sum(nil))
	return p, nil
}

// Fingerprint identifies the set of files and the lookup rules, so that a
// cached resolution is only reused when every specifier would resolve
// the same way.
func (p *pathResolver) Fingerprint() string { return p.digest }

func (p *pathResolver) ResolveDependency(from source.FileID, specifier string, _ resolver.DependencyKind) (source.FileID, bool) {
	spec := norm.NFC.String(specifier)
	if spec == "" {
		return 0, false
	}
	base, ok := p.base(from, spec)
	if !ok {
		return 0, false
	}
	for _, suffix := range probeSuffixes {
		if id, ok := p.byPath[canonicalPath(base+filepath.FromSlash(suffix))]; ok {
			return id, true
		}
	}
	return 0, false
}

// Lookup finds the input file stored under an absolute path.
func (p *pathResolver) Lookup(path string) (source.FileID, bool) {
	id, ok := p.byPath[canonicalPath(path)]
	return id, ok
}

// Path returns the absolute path of an input file.
func (p *pathResolver) Path(id source.FileID) string { return p.paths[id] }

func (p *pathResolver) base(from source.FileID, spec string) (string, bool) {
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), spec == ".", spec == "..":
		path, ok := p.paths[from]
		if !ok {
			return "", false
		}
		return filepath.Join(filepath.Dir(path), filepath.FromSlash(spec)), true
	case strings.HasPrefix(spec, "/"):
		return filepath.FromSlash(spec), true
	}
	for _, a := range p.aliases {
		if rest, ok := strings.CutPrefix(spec, a.prefix); ok {
			return filepath.Join(a.dir, filepath.FromSlash(rest)), true
		}
	}
	return filepath.Join(p.root, filepath.FromSlash(spec)), true
}

func canonicalPath(path string) string {
	return norm.NFC.String(filepath.ToSlash(filepath.Clean(path)))
}
