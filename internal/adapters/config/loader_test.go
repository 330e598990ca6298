package config_test

import (
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/phi/internal/adapters/config"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const fsRoot = "/work"

func newLoader(t *testing.T, files fstest.MapFS, env map[string]string) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	l := config.NewLoader(log)
	l.FS = config.NewMapFSAdapter(fsRoot, files)
	l.Getenv = func(k string) string { return env[k] }
	l.HomeDir = func() (string, error) { return "/home/user", nil }
	return l, log
}

func cfgFile(data string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(data), Mode: 0o644}
}

func TestDiscoverRoot(t *testing.T) {
	tests := []struct {
		name       string
		files      fstest.MapFS
		cwd        string
		wantRoot   string
		wantConfig string
	}{
		{
			name:     "no config uses cwd",
			files:    fstest.MapFS{"proj/src/a.φ": cfgFile("")},
			cwd:      "/work/proj/src",
			wantRoot: "/work/proj/src",
		},
		{
			name:       "walks up to config directory",
			files:      fstest.MapFS{"proj/.(φ)/custom_symbols.json": cfgFile("{}"), "proj/src/a.φ": cfgFile("")},
			cwd:        "/work/proj/src",
			wantRoot:   "/work/proj",
			wantConfig: "/work/proj/.(φ)/custom_symbols.json",
		},
		{
			name:       "ascii directory",
			files:      fstest.MapFS{"proj/.phi/custom_symbols.json": cfgFile("{}")},
			cwd:        "/work/proj",
			wantRoot:   "/work/proj",
			wantConfig: "/work/proj/.phi/custom_symbols.json",
		},
		{
			name: "json wins over yaml in the same directory",
			files: fstest.MapFS{
				"proj/.(φ)/custom_symbols.yaml": cfgFile(""),
				"proj/.phi/custom_symbols.json": cfgFile("{}"),
			},
			cwd:        "/work/proj",
			wantRoot:   "/work/proj",
			wantConfig: "/work/proj/.phi/custom_symbols.json",
		},
		{
			name: "nearest directory wins",
			files: fstest.MapFS{
				".(φ)/custom_symbols.json":     cfgFile("{}"),
				"proj/.(φ)/custom_symbols.yaml": cfgFile(""),
			},
			cwd:        "/work/proj",
			wantRoot:   "/work/proj",
			wantConfig: "/work/proj/.(φ)/custom_symbols.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLoader(t, tt.files, nil)
			root, cfg, err := l.DiscoverRoot(filepath.FromSlash(tt.cwd))
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantRoot), root)
			assert.Equal(t, filepath.FromSlash(tt.wantConfig), cfg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	l, _ := newLoader(t, fstest.MapFS{}, nil)

	s, err := l.Load("/work")
	require.NoError(t, err)
	assert.Equal(t, "/work", s.Root)
	assert.Empty(t, s.ConfigPath)
	assert.Equal(t, filepath.Join("/work", domain.CacheDirName), s.Cache.Path)
	assert.Equal(t, domain.DefaultMaxSize, s.Cache.MaxSize)
	assert.Equal(t, domain.DefaultMapping().Entries(), s.Mapping.Entries())
}

func TestLoad_JSON(t *testing.T) {
	files := fstest.MapFS{
		".(φ)/custom_symbols.json": cfgFile(`{
  "symbols": {"if": "¿", "print": "π", "while": "⟳"},
  "cache": {
    "cache_path": "build/cache",
    "max_size": 64,
    "batch_size": 2,
    "mmap_threshold": 1024,
    "buffer_size": 4096,
    "max_file_retries": 1,
    "retry_base_delay": 0.25,
    "validation": {"enabled": false}
  },
  "unknown_section": {"ignored": null}
}`),
	}
	l, _ := newLoader(t, files, nil)

	s, err := l.Load("/work")
	require.NoError(t, err)

	assert.Equal(t, "/work/.(φ)/custom_symbols.json", filepath.ToSlash(s.ConfigPath))
	assert.Equal(t, filepath.Join("/work", "build", "cache"), s.Cache.Path)
	assert.Equal(t, 64, s.Cache.MaxSize)
	assert.Equal(t, 2, s.Cache.BatchSize)
	assert.EqualValues(t, 1024, s.Cache.MmapThreshold)
	assert.Equal(t, 4096, s.Cache.BufferSize)
	assert.Equal(t, 1, s.Cache.MaxFileRetries)
	assert.Equal(t, 250*time.Millisecond, s.Cache.RetryBaseDelay)
	assert.False(t, s.Cache.Validation.Enabled)

	native, ok := s.Mapping.Native("⟳")
	require.True(t, ok)
	assert.Equal(t, "while", native)
	_, ok = s.Mapping.Native("↻")
	assert.False(t, ok, "the previous symbol of while no longer translates")

	_, ok = s.Mapping.Alt("async")
	assert.False(t, ok, "async used ⟳ and is evicted")
}

func TestLoad_YAML(t *testing.T) {
	files := fstest.MapFS{
		".phi/custom_symbols.yaml": cfgFile("symbols:\n  print: say\ncache:\n  max_size: 10\nvalidation:\n  strict: true\n"),
	}
	l, _ := newLoader(t, files, nil)

	s, err := l.Load("/work")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Cache.MaxSize)
	assert.True(t, s.Cache.Validation.Strict)
	native, _ := s.Mapping.Native("say")
	assert.Equal(t, "print", native)
}

func TestLoad_InvalidSymbolSkippedWithWarning(t *testing.T) {
	files := fstest.MapFS{
		".(φ)/custom_symbols.json": cfgFile(`{"symbols": {"not valid": "x", "print": "π2"}}`),
	}
	l, log := newLoader(t, files, nil)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	s, err := l.Load("/work")
	require.NoError(t, err)
	native, _ := s.Mapping.Native("π2")
	assert.Equal(t, "print", native)
}

func TestLoad_InvalidSymbolStrict(t *testing.T) {
	files := fstest.MapFS{
		".(φ)/custom_symbols.json": cfgFile(`{"symbols": {"1bad": "x"}, "cache": {"validation": {"strict": true}}}`),
	}
	l, _ := newLoader(t, files, nil)

	_, err := l.Load("/work")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSymbol))
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := map[string]string{
		config.EnvCacheSize:     "32",
		config.EnvBatchSize:     "9",
		config.EnvMmapThreshold: "0",
		config.EnvCachePath:     "$CACHE_HOME/phi",
		"CACHE_HOME":            "/var/cache",
		config.EnvValidation:    "false",
		config.EnvStrict:        "true",
	}
	l, _ := newLoader(t, fstest.MapFS{}, env)

	s, err := l.Load("/work")
	require.NoError(t, err)
	assert.Equal(t, 32, s.Cache.MaxSize)
	assert.Equal(t, 9, s.Cache.BatchSize)
	assert.EqualValues(t, 0, s.Cache.MmapThreshold)
	assert.Equal(t, filepath.FromSlash("/var/cache/phi"), s.Cache.Path)
	assert.False(t, s.Cache.Validation.Enabled)
	assert.True(t, s.Cache.Validation.Strict)
}

func TestLoad_FileBeatsEnv(t *testing.T) {
	files := fstest.MapFS{".(φ)/custom_symbols.json": cfgFile(`{"cache": {"max_size": 7}}`)}
	l, _ := newLoader(t, files, map[string]string{config.EnvCacheSize: "32", config.EnvBatchSize: "3"})

	s, err := l.Load("/work")
	require.NoError(t, err)
	assert.Equal(t, 7, s.Cache.MaxSize)
	assert.Equal(t, 3, s.Cache.BatchSize)
}

func TestLoad_HomeExpansion(t *testing.T) {
	files := fstest.MapFS{".(φ)/custom_symbols.json": cfgFile(`{"cache": {"cache_path": "~/.phi-cache"}}`)}
	l, _ := newLoader(t, files, nil)

	s, err := l.Load("/work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/user", ".phi-cache"), s.Cache.Path)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		env   map[string]string
		want  error
	}{
		{
			name:  "malformed json",
			files: fstest.MapFS{".(φ)/custom_symbols.json": cfgFile(`{"symbols":`)},
			want:  domain.ErrConfigParseFailed,
		},
		{
			name:  "out of range",
			files: fstest.MapFS{".(φ)/custom_symbols.json": cfgFile(`{"cache": {"max_size": 0}}`)},
			want:  domain.ErrInvalidSetting,
		},
		{
			name:  "empty cache path",
			files: fstest.MapFS{".(φ)/custom_symbols.json": cfgFile(`{"cache": {"cache_path": ""}}`)},
			want:  domain.ErrInvalidSetting,
		},
		{
			name:  "bad env integer",
			files: fstest.MapFS{},
			env:   map[string]string{config.EnvBatchSize: "many"},
			want:  domain.ErrInvalidSetting,
		},
		{
			name:  "bad env bool",
			files: fstest.MapFS{},
			env:   map[string]string{config.EnvStrict: "perhaps"},
			want:  domain.ErrInvalidSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLoader(t, tt.files, tt.env)
			_, err := l.Load("/work")
			require.Error(t, err)
			if tt.want == domain.ErrConfigParseFailed {
				assert.Contains(t, err.Error(), tt.want.Error())
				return
			}
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}
