package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// InputExt is the suffix of the ESTree files picked up from directories.
const InputExt = ".json"

// ListInputs expands paths into a sorted, duplicate-free list of files.
// Directories are walked for InputExt files; named files are taken as is.
func ListInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, InputExt) {
				files = append(files, filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// readInput reads an ESTree file and the source it was printed from: a.js
// for a.js.json or a.json. A missing source is not an error.
func readInput(path string) (estree, text []byte, err error) {
	// #nosec G304 -- path is provided by the caller
	estree, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	src := strings.TrimSuffix(path, InputExt)
	if src == path {
		return estree, nil, nil
	}
	if filepath.Ext(src) == "" {
		src += ".js"
	}
	// #nosec G304 -- derived from a caller provided path
	text, err = os.ReadFile(src)
	if err != nil {
		return estree, nil, nil
	}
	return estree, text, nil
}
