package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/t14raptor/fastscope/config"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/source"
)

// cacheSchema is bumped whenever cacheEntry changes shape.
const cacheSchema uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [32]byte

// Cache keeps per-file resolution results on disk, keyed by content,
// options and the set of input files. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultCacheDir is $XDG_CACHE_HOME/app, falling back to ~/.cache/app.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// put writes entry under key, replacing any previous entry atomically.
func (c *Cache) put(key Digest, entry *cacheEntry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(entry); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	err = os.Rename(f.Name(), p)
	return err
}

// get decodes the entry stored under key into out. A missing entry is
// not an error.
func (c *Cache) get(key Digest, out *cacheEntry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	return out.Schema == cacheSchema, nil
}

// DropAll removes every cached entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}

// cacheKey hashes everything a file's resolution depends on.
func cacheKey(cfg config.Config, fingerprint string, content []byte) Digest {
	h := sha256.New()
	enc := msgpack.NewEncoder(h)
	enc.SetSortMapKeys(true)
	// encoding into a hash cannot fail
	_ = enc.Encode(cacheSchema)
	_ = enc.Encode(cfg.Resolver)
	_ = enc.Encode(cfg.Modules.Enabled)
	_ = enc.Encode(cfg.Output.MaxDiagnostics)
	_ = enc.Encode(fingerprint)
	_, _ = h.Write(content)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cachedSpan stores a span by path; an empty Path is the cached file.
type cachedSpan struct {
	Path       string
	Start, End uint32
}

type cachedNote struct {
	Span cachedSpan
	Msg  string
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Primary  cachedSpan
	Notes    []cachedNote
}

type cachedDependency struct {
	Specifier string
	Kind      uint8
	Path      string
	Span      cachedSpan
}

type cacheEntry struct {
	Schema       uint16
	Module       bool
	Diagnostics  []cachedDiagnostic
	Dropped      int
	Dependencies []cachedDependency
	// WithSnapshot and WithDump record which outputs were kept.
	WithSnapshot bool
	Snapshot     *resolver.Snapshot
	WithDump     bool
	Dump         string
}

func newCacheEntry(res *FileResult, deps *pathResolver, opts Options) *cacheEntry {
	span := func(s source.Span) cachedSpan {
		cs := cachedSpan{Start: s.Start, End: s.End}
		if s.File != res.File {
			cs.Path = deps.Path(s.File)
		}
		return cs
	}
	e := &cacheEntry{
		Schema:       cacheSchema,
		Module:       res.Module,
		Dropped:      res.Dropped,
		WithSnapshot: opts.Snapshot,
		Snapshot:     res.Snapshot,
		WithDump:     opts.Dump,
		Dump:         res.Dump,
	}
	for _, d := range res.Diagnostics {
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Primary:  span(d.Primary),
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Span: span(n.Span), Msg: n.Msg})
		}
		e.Diagnostics = append(e.Diagnostics, cd)
	}
	for _, dep := range res.Dependencies {
		e.Dependencies = append(e.Dependencies, cachedDependency{
			Specifier: dep.Specifier,
			Kind:      uint8(dep.Kind),
			Path:      deps.Path(dep.File),
			Span:      span(dep.Span),
		})
	}
	return e
}

// restore fills res from the entry. It reports false when the entry
// lacks an output opts asks for or names a file that is not an input.
func (e *cacheEntry) restore(res *FileResult, deps *pathResolver, opts Options) bool {
	if (opts.Snapshot && !e.WithSnapshot) || (opts.Dump && !e.WithDump) {
		return false
	}
	ok := true
	span := func(cs cachedSpan) source.Span {
		s := source.Span{File: res.File, Start: cs.Start, End: cs.End}
		if cs.Path != "" {
			id, found := deps.Lookup(cs.Path)
			ok = ok && found
			s.File = id
		}
		return s
	}

	var diags []diag.Diagnostic
	for _, cd := range e.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  span(cd.Primary),
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.Span), Msg: n.Msg})
		}
		diags = append(diags, d)
	}
	var depList []Dependency
	for _, cd := range e.Dependencies {
		file, found := deps.Lookup(cd.Path)
		ok = ok && found
		depList = append(depList, Dependency{
			Specifier: cd.Specifier,
			Kind:      resolver.DependencyKind(cd.Kind),
			File:      file,
			Span:      span(cd.Span),
		})
	}
	if !ok {
		return false
	}

	res.Module = e.Module
	res.Diagnostics = diags
	res.Dropped = e.Dropped
	res.Dependencies = depList
	if opts.Snapshot {
		res.Snapshot = e.Snapshot
	}
	if opts.Dump {
		res.Dump = e.Dump
	}
	return true
}
