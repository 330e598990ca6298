package loader_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/phi/internal/adapters/lifecycle"
	"go.trai.ch/phi/internal/adapters/starlark"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports/mocks"
	"go.trai.ch/phi/internal/engine/loader"
	"go.uber.org/mock/gomock"
)

type harness struct {
	root     string
	settings *domain.Settings
	factory  *loader.Factory
	hooks    *lifecycle.Hooks
	out      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	compiler, err := starlark.NewCompiler()
	require.NoError(t, err)
	out := &bytes.Buffer{}
	compiler.SetOutput(out)

	root := t.TempDir()
	settings := domain.DefaultSettings(root)
	settings.Cache.Path = filepath.Join(root, domain.CacheDirName)

	hooks := lifecycle.New(log)
	t.Cleanup(hooks.Shutdown)

	return &harness{
		root:     root,
		settings: settings,
		factory:  loader.NewFactory(log, compiler, hooks),
		hooks:    hooks,
		out:      out,
	}
}

func (h *harness) write(t *testing.T, rel, text string) string {
	t.Helper()
	path := filepath.Join(h.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func (h *harness) loader(t *testing.T) *loader.Loader {
	t.Helper()
	l, err := h.factory.New(h.settings)
	require.NoError(t, err)
	return l
}

// run executes name as the entry module on a fresh loader and flushes its artifacts.
func (h *harness) run(t *testing.T, name string) loader.Stats {
	t.Helper()
	l := h.loader(t)
	spec, ok := l.Resolve(name)
	require.True(t, ok, "module %s not found", name)

	_, err := l.Run(context.Background(), spec, nil)
	require.NoError(t, err)
	require.NoError(t, l.Close())
	return l.Stats()
}

func (h *harness) artifacts(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(h.settings.Cache.Path, "*", "*"+domain.ArtifactExt))
	require.NoError(t, err)
	return matches
}

func TestLoader_EndToEnd(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "main.φ", "x = 1\n¿ x: π(x)\n")

	l := h.loader(t)
	translated, err := l.Translate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\nif x: print(x)\n", translated)
	require.NoError(t, l.Close())

	stats := h.run(t, "main")
	assert.Equal(t, "1\n", h.out.String())
	assert.Equal(t, int64(1), stats.Compiles)
	assert.Equal(t, int64(1), stats.Fallbacks, "top-level if needs the lenient dialect")
	assert.Len(t, h.artifacts(t), 1)
}

func TestLoader_SecondLoadIsHit(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(\"hello\")\n")

	first := h.run(t, "main")
	assert.Equal(t, int64(1), first.Compiles)

	second := h.run(t, "main")
	assert.Equal(t, int64(0), second.Compiles)
	assert.Equal(t, int64(1), second.Hits)
	assert.Equal(t, "hello\nhello\n", h.out.String())
}

func TestLoader_ChangedSourceRecompiles(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(1)\n")
	h.run(t, "main")

	h.write(t, "main.φ", "π(2)\n")
	stats := h.run(t, "main")

	assert.Equal(t, int64(1), stats.Compiles)
	assert.Equal(t, "1\n2\n", h.out.String())
	assert.Len(t, h.artifacts(t), 1)
}

func TestLoader_ChangedSymbolTableRecompiles(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(\"ab\")\n")

	first := h.run(t, "main")
	assert.Equal(t, int64(1), first.Compiles)

	issues := h.settings.Mapping.ApplyCustom(map[string]string{"len": "π"})
	require.Empty(t, issues)

	second := h.run(t, "main")
	assert.Equal(t, int64(1), second.Compiles, "artifact from the old table must not be reused")
	assert.Equal(t, int64(0), second.Hits)
	assert.Equal(t, "ab\n", h.out.String(), "π now means len, which prints nothing")

	third := h.run(t, "main")
	assert.Equal(t, int64(1), third.Hits)
	assert.Len(t, h.artifacts(t), 1)
}

func TestLoader_CorruptMagicRecompilesOnce(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(\"ok\")\n")
	h.run(t, "main")

	files := h.artifacts(t)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	data[0] ^= 0xff
	require.NoError(t, os.WriteFile(files[0], data, 0o600))

	stats := h.run(t, "main")
	assert.Equal(t, int64(1), stats.Compiles)
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Corrupt, "a bad header is a plain miss")

	stats = h.run(t, "main")
	assert.Equal(t, int64(0), stats.Compiles)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestLoader_CorruptPayloadRecompiles(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(\"ok\")\n")
	h.run(t, "main")

	files := h.artifacts(t)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.Greater(t, len(data), domain.HeaderSize+2)
	mid := domain.HeaderSize + (len(data)-domain.HeaderSize)/2
	data[mid] ^= 0xff
	require.NoError(t, os.WriteFile(files[0], data, 0o600))

	stats := h.run(t, "main")
	assert.Equal(t, int64(1), stats.Corrupt)
	assert.Equal(t, int64(1), stats.Compiles)
	assert.Equal(t, "ok\nok\n", h.out.String())
}

func TestLoader_Import(t *testing.T) {
	h := newHarness(t)
	h.write(t, "pkg/__init__.φ", "base = 10\n")
	h.write(t, "pkg/util.φ", "load(\"pkg\", \"base\")\nƒ double(n):\n    ⟲ base + n * 2\n")
	h.write(t, "main.φ", "load(\"pkg.util\", \"double\")\nπ(double(1))\nπ(__name__)\n")

	stats := h.run(t, "main")
	assert.Equal(t, "12\n__main__\n", h.out.String())
	assert.Equal(t, int64(3), stats.Executions)
	assert.Equal(t, int64(3), stats.Compiles)
}

func TestLoader_ImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
		wantMsg string
	}{
		{
			name: "cycle",
			files: map[string]string{
				"a.φ":    "load(\"b\", \"y\")\nx = 1\n",
				"b.φ":    "load(\"a\", \"x\")\ny = 2\n",
				"main.φ": "load(\"a\", \"x\")\n",
			},
			wantErr: domain.ErrImportCycle,
			wantMsg: "a -> b -> a",
		},
		{
			name: "self import",
			files: map[string]string{
				"main.φ": "load(\"main\", \"x\")\n",
			},
			wantErr: domain.ErrImportCycle,
			wantMsg: "main -> main",
		},
		{
			name: "missing module",
			files: map[string]string{
				"main.φ": "load(\"nowhere\", \"x\")\n",
			},
			wantErr: domain.ErrModuleNotFound,
			wantMsg: "nowhere",
		},
		{
			name: "compile error in dependency",
			files: map[string]string{
				"lib.φ":  "x = (\n",
				"main.φ": "load(\"lib\", \"x\")\n",
			},
			wantErr: domain.ErrCompileFailed,
			wantMsg: "lib.φ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			for rel, text := range tt.files {
				h.write(t, rel, text)
			}

			l := h.loader(t)
			defer func() { _ = l.Close() }()
			spec, ok := l.Resolve("main")
			require.True(t, ok)

			_, err := l.Run(context.Background(), spec, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoader_FailedImportIsRetried(t *testing.T) {
	h := newHarness(t)
	h.write(t, "lib.φ", "load(\"dep\", \"y\")\nx = y\n")

	l := h.loader(t)
	defer func() { _ = l.Close() }()

	_, err := l.Import(context.Background(), "lib")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModuleNotFound))

	h.write(t, "dep.φ", "y = 1\n")
	mod, err := l.Import(context.Background(), "lib")
	require.NoError(t, err)
	assert.Equal(t, "lib", mod.Name)
}

func TestLoader_ReadError(t *testing.T) {
	h := newHarness(t)
	l := h.loader(t)
	defer func() { _ = l.Close() }()

	spec := &domain.LoadSpec{Name: "ghost", Path: filepath.Join(h.root, "ghost.φ")}
	_, err := l.Run(context.Background(), spec, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReadFailed))

	var se *domain.SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ghost", se.Module)
}

func TestLoader_ConcurrentImportsExecuteOnce(t *testing.T) {
	h := newHarness(t)
	h.write(t, "lib.φ", "π(\"lib\")\nvalue = 42\n")

	l := h.loader(t)
	defer func() { _ = l.Close() }()

	const workers = 8
	var wg sync.WaitGroup
	mods := make([]*domain.Module, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mods[i], errs[i] = l.Import(context.Background(), "lib")
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Same(t, mods[0], mods[i])
	}
	assert.Equal(t, int64(1), l.Stats().Executions)
	assert.Equal(t, "lib\n", h.out.String())
}

func TestLoader_Precompile(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(\"never printed\")\n")

	l := h.loader(t)
	spec, ok := l.Resolve("main")
	require.True(t, ok)

	cached, err := l.Precompile(context.Background(), spec)
	require.NoError(t, err)
	assert.False(t, cached)
	require.NoError(t, l.Close())

	l = h.loader(t)
	cached, err = l.Precompile(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, cached)
	require.NoError(t, l.Close())

	assert.Empty(t, h.out.String())
}

func TestLoader_AddRoot(t *testing.T) {
	h := newHarness(t)
	h.write(t, "vendor/extra.φ", "greeting = \"hi\"\n")
	h.write(t, "main.φ", "load(\"extra\", \"greeting\")\nπ(greeting)\n")

	l := h.loader(t)
	defer func() { _ = l.Close() }()

	extra := filepath.Join(h.root, "vendor")
	first := l.AddRoot(extra)
	assert.Same(t, first, l.AddRoot(extra+string(filepath.Separator)))
	assert.Equal(t, []string{h.root, extra}, l.Roots())

	spec, ok := l.Resolve("main")
	require.True(t, ok)
	_, err := l.Run(context.Background(), spec, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", h.out.String())
}

func TestLoader_ShutdownFlushesAndCleans(t *testing.T) {
	h := newHarness(t)
	h.write(t, "main.φ", "π(1)\n")
	h.settings.Cache.BatchSize = 10

	l := h.loader(t)
	spec, ok := l.Resolve("main")
	require.True(t, ok)
	_, err := l.Run(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Empty(t, h.artifacts(t), "batch not full yet")

	stray := filepath.Join(h.settings.Cache.Path, "leftover"+domain.TempExt)
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o600))

	h.hooks.Shutdown()

	assert.Len(t, h.artifacts(t), 1)
	assert.NoFileExists(t, stray)
}
