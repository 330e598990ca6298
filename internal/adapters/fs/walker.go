// Package fs provides file system adapters for reading, locating and walking module sources.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.trai.ch/phi/internal/core/domain"
)

// ModuleFile is a source file found by the Walker.
type ModuleFile struct {
	// Name is the dotted module name relative to the walk root.
	Name string
	// Path is the file path as produced by the walk.
	Path string
}

// Walker finds module sources below a directory.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkModules yields every module source below root. Hidden directories, the
// cache directory and directories whose names are not valid module parts are skipped.
func (w *Walker) WalkModules(root string) iter.Seq[ModuleFile] {
	return func(yield func(ModuleFile) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && shouldSkipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(d.Name(), domain.SourceExt) {
				return nil
			}

			name, ok := moduleName(root, path)
			if !ok {
				return nil
			}
			if !yield(ModuleFile{Name: name, Path: path}) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkipDir rejects dotted names, which covers hidden and cache directories.
func shouldSkipDir(name string) bool {
	return strings.Contains(name, ".") || name == "__pycache__"
}

// moduleName derives the dotted name of path relative to root. A package index
// file names its directory.
func moduleName(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == domain.PackageIndexName:
		return "", false
	case strings.HasSuffix(rel, "/"+domain.PackageIndexName):
		rel = strings.TrimSuffix(rel, "/"+domain.PackageIndexName)
	default:
		rel = strings.TrimSuffix(rel, domain.SourceExt)
		if strings.Contains(filepath.Base(rel), ".") {
			return "", false
		}
	}

	name := strings.ReplaceAll(rel, "/", ".")
	if _, ok := domain.ModuleNameParts(name); !ok {
		return "", false
	}
	return name, true
}
