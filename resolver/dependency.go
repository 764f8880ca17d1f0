package resolver

import "github.com/t14raptor/fastscope/source"

// DependencyResolver maps a module specifier written in file to the file
// it names.
type DependencyResolver interface {
	ResolveDependency(file source.FileID, specifier string, kind DependencyKind) (source.FileID, bool)
}

// MapDependencies resolves specifiers from a fixed table, regardless of
// the importing file.
type MapDependencies map[string]source.FileID

func (m MapDependencies) ResolveDependency(_ source.FileID, specifier string, _ DependencyKind) (source.FileID, bool) {
	id, ok := m[specifier]
	return id, ok
}
