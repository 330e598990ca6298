package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/phi/internal/adapters/fs"
	"go.trai.ch/phi/internal/adapters/memcache"
	"go.trai.ch/phi/internal/core/domain"
)

func newResolver(root string) *fs.Resolver {
	return fs.NewResolver(root, memcache.New[domain.SpecKey, *domain.LoadSpec](16))
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.φ"), "")
	writeFile(t, filepath.Join(root, "pkg", domain.PackageIndexName), "")
	writeFile(t, filepath.Join(root, "pkg", "util.φ"), "")
	writeFile(t, filepath.Join(root, "both.φ"), "")
	writeFile(t, filepath.Join(root, "both", domain.PackageIndexName), "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), domain.DirPerm))

	tests := []struct {
		name        string
		module      string
		wantPath    string
		wantPackage bool
		wantFound   bool
	}{
		{name: "module file", module: "app", wantPath: filepath.Join(root, "app.φ"), wantFound: true},
		{name: "package", module: "pkg", wantPath: filepath.Join(root, "pkg", domain.PackageIndexName), wantPackage: true, wantFound: true},
		{name: "submodule", module: "pkg.util", wantPath: filepath.Join(root, "pkg", "util.φ"), wantFound: true},
		{name: "file before package", module: "both", wantPath: filepath.Join(root, "both.φ"), wantFound: true},
		{name: "directory without index", module: "empty"},
		{name: "missing", module: "nope"},
		{name: "empty part", module: "pkg..util"},
		{name: "parent reference", module: ".."},
		{name: "separator", module: "pkg/util"},
	}

	r := newResolver(root)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := r.Resolve(tt.module)
			require.Equal(t, tt.wantFound, ok)
			if !ok {
				assert.Nil(t, spec)
				return
			}
			assert.Equal(t, tt.module, spec.Name)
			assert.Equal(t, tt.wantPath, spec.Path)
			assert.Equal(t, tt.wantPackage, spec.IsPackage())
			if tt.wantPackage {
				assert.Equal(t, []string{filepath.Dir(tt.wantPath)}, spec.SearchPaths)
			}
		})
	}
}

func TestResolver_CachesUntilModified(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "app.φ")
	writeFile(t, path, "")

	r := newResolver(root)
	first, ok := r.Resolve("app")
	require.True(t, ok)

	second, ok := r.Resolve("app")
	require.True(t, ok)
	assert.Same(t, first, second, "unchanged file is served from the spec cache")

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	third, ok := r.Resolve("app")
	require.True(t, ok)
	assert.NotSame(t, first, third)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime().UnixNano(), third.ModTime)

	require.NoError(t, os.Remove(path))
	_, ok = r.Resolve("app")
	assert.False(t, ok)
}

func TestResolver_Root(t *testing.T) {
	assert.Equal(t, "/src", newResolver("/src").Root())
}
