// Package config provides the configuration loader and generator for phi.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the cache tunables.
const (
	EnvCacheSize     = "PHI_CACHE_SIZE"
	EnvMmapThreshold = "PHI_MMAP_THRESHOLD"
	EnvBatchSize     = "PHI_BATCH_SIZE"
	EnvCachePath     = "PHI_CACHE_PATH"
	EnvValidation    = "PHI_VALIDATION"
	EnvStrict        = "PHI_STRICT"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using custom_symbols.json or custom_symbols.yaml.
type Loader struct {
	Logger  ports.Logger
	FS      FileSystem
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// NewLoader creates a new Loader backed by the OS file system and environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:  logger,
		FS:      NewOSFS(),
		Getenv:  os.Getenv,
		HomeDir: os.UserHomeDir,
	}
}

// DiscoverRoot walks up from cwd looking for a configuration file. The directory
// holding the configuration directory is the project root; without one, cwd is.
func (l *Loader) DiscoverRoot(cwd string) (root, configPath string, err error) {
	start, err := filepath.Abs(cwd)
	if err != nil {
		return "", "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	currentDir := start
	for {
		for _, candidate := range domain.ConfigCandidates(currentDir) {
			info, statErr := l.FS.Stat(candidate)
			if statErr == nil && info.Mode().IsRegular() {
				return currentDir, candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return start, "", nil
}

// Load returns the effective settings for cwd. Precedence is built-in defaults,
// then environment, then the configuration file.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	root, configPath, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	settings := domain.DefaultSettings(root)
	settings.ConfigPath = configPath

	if err := l.applyEnv(&settings.Cache); err != nil {
		return nil, err
	}

	if configPath != "" {
		file, err := l.readFile(configPath)
		if err != nil {
			return nil, err
		}
		applyFile(settings, file)
		if err := l.applySymbols(settings, file.Symbols); err != nil {
			return nil, err
		}
	}

	if err := validate(&settings.Cache); err != nil {
		return nil, zerr.With(err, "config_path", configPath)
	}

	cachePath, err := l.expandPath(root, settings.Cache.Path)
	if err != nil {
		return nil, err
	}
	settings.Cache.Path = cachePath
	return settings, nil
}

func (l *Loader) readFile(path string) (*File, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file File
	if strings.HasSuffix(path, ".yaml") {
		err = yaml.Unmarshal(data, &file)
	} else {
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return &file, nil
}

// applySymbols installs the custom symbols. Invalid entries are skipped with a
// warning, or rejected when strict validation is on.
func (l *Loader) applySymbols(settings *domain.Settings, symbols map[string]string) error {
	if len(symbols) == 0 {
		return nil
	}
	settings.Symbols = symbols

	for _, issue := range settings.Mapping.ApplyCustom(symbols) {
		if settings.Cache.Validation.Strict {
			return zerr.With(issue.Err, "config_path", settings.ConfigPath)
		}
		l.Logger.Warn(fmt.Sprintf("skipping custom symbol %q -> %q: %v", issue.Native, issue.Alt, issue.Err))
	}
	return nil
}

func applyFile(settings *domain.Settings, file *File) {
	applyValidation(&settings.Cache.Validation, file.Validation)

	c := file.Cache
	if c == nil {
		return
	}
	cache := &settings.Cache
	if c.CachePath != nil {
		cache.Path = *c.CachePath
	}
	if c.MaxSize != nil {
		cache.MaxSize = *c.MaxSize
	}
	if c.BatchSize != nil {
		cache.BatchSize = *c.BatchSize
	}
	if c.MmapThreshold != nil {
		cache.MmapThreshold = *c.MmapThreshold
	}
	if c.BufferSize != nil {
		cache.BufferSize = *c.BufferSize
	}
	if c.MaxFileRetries != nil {
		cache.MaxFileRetries = *c.MaxFileRetries
	}
	if c.RetryBaseDelay != nil {
		cache.RetryBaseDelay = time.Duration(*c.RetryBaseDelay * float64(time.Second))
	}
	applyValidation(&cache.Validation, c.Validation)
}

func applyValidation(dst *domain.ValidationSettings, v *ValidationDTO) {
	if v == nil {
		return
	}
	if v.Enabled != nil {
		dst.Enabled = *v.Enabled
	}
	if v.Strict != nil {
		dst.Strict = *v.Strict
	}
}

func (l *Loader) applyEnv(cache *domain.CacheSettings) error {
	if v := l.Getenv(EnvCachePath); v != "" {
		cache.Path = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvCacheSize, &cache.MaxSize},
		{EnvBatchSize, &cache.BatchSize},
	}
	for _, e := range ints {
		v := l.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, err.Error()), "env", e.name)
		}
		*e.dst = n
	}

	if v := l.Getenv(EnvMmapThreshold); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, err.Error()), "env", EnvMmapThreshold)
		}
		cache.MmapThreshold = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{EnvValidation, &cache.Validation.Enabled},
		{EnvStrict, &cache.Validation.Strict},
	}
	for _, e := range bools {
		v := l.Getenv(e.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, err.Error()), "env", e.name)
		}
		*e.dst = b
	}
	return nil
}

// expandPath expands $VAR, ${VAR} and a leading ~, then resolves relative
// paths against root.
func (l *Loader) expandPath(root, path string) (string, error) {
	path = os.Expand(path, l.Getenv)

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := l.HomeDir()
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to expand home directory"), "cache_path", path)
		}
		path = filepath.Join(home, path[1:])
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return filepath.Clean(path), nil
}

func validate(c *domain.CacheSettings) error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"cache_path", c.Path != ""},
		{"max_size", c.MaxSize >= 1},
		{"batch_size", c.BatchSize >= 1},
		{"mmap_threshold", c.MmapThreshold >= 0},
		{"buffer_size", c.BufferSize >= 1},
		{"max_file_retries", c.MaxFileRetries >= 0},
		{"retry_base_delay", c.RetryBaseDelay >= 0},
	}
	for _, check := range checks {
		if !check.ok {
			return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "value out of range"), "setting", check.name)
		}
	}
	return nil
}
