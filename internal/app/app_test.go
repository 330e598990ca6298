package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/phi/internal/adapters/config"
	"go.trai.ch/phi/internal/adapters/fs"
	"go.trai.ch/phi/internal/adapters/lifecycle"
	"go.trai.ch/phi/internal/adapters/starlark"
	"go.trai.ch/phi/internal/app"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports/mocks"
	"go.trai.ch/phi/internal/engine/loader"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	app  *app.App
	dir  string
	out  *bytes.Buffer
	log  *mocks.MockLogger
	ctrl *gomock.Controller
}

func newFixture(t *testing.T) *fixture {
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

	hooks := lifecycle.New(log)
	t.Cleanup(hooks.Shutdown)

	cfg := config.NewLoader(log)
	cfg.Getenv = func(string) string { return "" }

	dir := t.TempDir()
	a := app.New(
		cfg,
		config.NewGenerator(log),
		loader.NewFactory(log, compiler, hooks),
		fs.NewWalker(),
		log,
	).WithWorkDir(dir)

	return &fixture{app: a, dir: dir, out: out, log: log, ctrl: ctrl}
}

func (f *fixture) write(t *testing.T, rel, text string) {
	t.Helper()
	path := filepath.Join(f.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
}

func TestApp_RunFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "scripts/tool.φ", "load(\"helper\", \"greet\")\nπ(greet(argv[1]))\nπ(__name__)\n")
	f.write(t, "scripts/helper.φ", "ƒ greet(who):\n    ⟲ \"hello \" + who\n")

	err := f.app.Run(context.Background(), "scripts/tool.φ", []string{"phi"})
	require.NoError(t, err)
	assert.Equal(t, "hello phi\n__main__\n", f.out.String())
}

func TestApp_RunModule(t *testing.T) {
	f := newFixture(t)
	f.write(t, "pkg/__init__.φ", "π(\"package\")\n")
	f.write(t, "pkg/app.φ", "π(\"app\")\n")

	require.NoError(t, f.app.Run(context.Background(), "pkg.app", nil))
	require.NoError(t, f.app.Run(context.Background(), "pkg", nil))
	assert.Equal(t, "app\npackage\n", f.out.String())
}

func TestApp_RunErrors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		files   map[string]string
		wantErr error
	}{
		{name: "unknown module", target: "missing", wantErr: domain.ErrModuleNotFound},
		{name: "invalid module name", target: "a..b", wantErr: domain.ErrInvalidModuleName},
		{name: "missing file", target: "nope.φ", wantErr: domain.ErrReadFailed},
		{
			name:    "syntax error",
			target:  "bad.φ",
			files:   map[string]string{"bad.φ": "x = (\n"},
			wantErr: domain.ErrCompileFailed,
		},
		{
			name:    "runtime error",
			target:  "boom",
			files:   map[string]string{"boom.φ": "x = 1 // 0\n"},
			wantErr: domain.ErrExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for rel, text := range tt.files {
				f.write(t, rel, text)
			}
			err := f.app.Run(context.Background(), tt.target, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestApp_Compile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.φ", "π(\"a\")\n")
	f.write(t, "pkg/__init__.φ", "x = 1\n")
	f.write(t, "pkg/b.φ", "y = 2\n")
	f.write(t, ".hidden/c.φ", "z = 3\n")

	report, err := f.app.Compile(context.Background(), "", app.CompileOptions{Jobs: 2})
	require.NoError(t, err)
	assert.Equal(t, app.CompileReport{Modules: 3}, report)

	report, err = f.app.Compile(context.Background(), f.dir, app.CompileOptions{})
	require.NoError(t, err)
	assert.Equal(t, app.CompileReport{Modules: 3, Cached: 3}, report)

	assert.Empty(t, f.out.String(), "compiling must not execute modules")
}

func TestApp_CompileReportsFailures(t *testing.T) {
	f := newFixture(t)
	f.write(t, "good.φ", "x = 1\n")
	f.write(t, "bad.φ", "x = (\n")

	report, err := f.app.Compile(context.Background(), "", app.CompileOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompileFailed))
	assert.Equal(t, 2, report.Modules)
	assert.Equal(t, 1, report.Failed)
}

func TestApp_Translate(t *testing.T) {
	f := newFixture(t)
	f.write(t, "main.φ", "¿ ✓:\n    π(\"¿ stays\")  # π stays\n")

	text, err := f.app.Translate(context.Background(), "main.φ")
	require.NoError(t, err)
	assert.Equal(t, "if True:\n    print(\"¿ stays\")  # π stays\n", text)
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	f.write(t, "main.φ", "x = 1\n")
	_, err := f.app.Compile(context.Background(), "", app.CompileOptions{})
	require.NoError(t, err)

	cache := filepath.Join(f.dir, domain.CacheDirName)
	assert.DirExists(t, cache)

	require.NoError(t, f.app.Clean(context.Background()))
	assert.NoDirExists(t, cache)
}

func TestApp_Config(t *testing.T) {
	f := newFixture(t)

	path, err := f.app.ConfigInit(false)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfigPath(f.dir), path)

	_, err = f.app.ConfigInit(false)
	assert.True(t, errors.Is(err, domain.ErrConfigExists))

	out, err := f.app.ConfigShow()
	require.NoError(t, err)
	assert.Contains(t, string(out), "config_path: "+path)

	removed, err := f.app.ConfigReset()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, path)
}

func TestApp_ConfigureLogging(t *testing.T) {
	f := newFixture(t)
	// The mock logger has no runtime controls; the call must be a no-op.
	f.app.ConfigureLogging(true, true)
}
