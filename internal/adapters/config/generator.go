package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigGenerator = (*Generator)(nil)

// Generator writes, removes and renders configuration files.
type Generator struct {
	Logger ports.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(logger ports.Logger) *Generator {
	return &Generator{Logger: logger}
}

// DefaultFile returns the full default configuration: every built-in symbol
// and every cache tunable.
func DefaultFile() *File {
	cache := domain.DefaultCacheSettings()
	cachePath := cache.Path
	delay := cache.RetryBaseDelay.Seconds()
	enabled, strict := cache.Validation.Enabled, cache.Validation.Strict

	return &File{
		FileExtension: domain.SourceExt,
		Symbols:       domain.DefaultSymbols(),
		Validation:    &ValidationDTO{Enabled: &enabled, Strict: &strict},
		Cache: &CacheDTO{
			CachePath:      &cachePath,
			MaxSize:        &cache.MaxSize,
			BatchSize:      &cache.BatchSize,
			MmapThreshold:  &cache.MmapThreshold,
			BufferSize:     &cache.BufferSize,
			MaxFileRetries: &cache.MaxFileRetries,
			RetryBaseDelay: &delay,
			Validation:     &ValidationDTO{Enabled: &enabled, Strict: &strict},
		},
	}
}

// Init writes the default configuration below root and returns its path.
// An existing file is only replaced when force is set.
func (g *Generator) Init(root string, force bool) (string, error) {
	path := domain.DefaultConfigPath(root)
	if _, err := os.Stat(path); err == nil && !force {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigExists, "use --force to overwrite"), "path", path)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(DefaultFile()); err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigWriteFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigWriteFailed.Error()), "path", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigWriteFailed.Error()), "path", path)
	}

	g.Logger.Info(fmt.Sprintf("configuration generated: %s", path))
	return path, nil
}

// Reset removes every configuration file directly below root.
// It reports whether anything was removed.
func (g *Generator) Reset(root string) (bool, error) {
	removed := false
	for _, path := range domain.ConfigCandidates(root) {
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = true
			g.Logger.Info(fmt.Sprintf("configuration reset: %s", path))
		case errors.Is(err, fs.ErrNotExist):
		default:
			return removed, zerr.With(zerr.Wrap(err, "failed to remove config file"), "path", path)
		}
	}
	if !removed {
		g.Logger.Info("no configuration file to reset")
	}
	return removed, nil
}

// effectiveView is what `config show` prints.
type effectiveView struct {
	Root       string               `yaml:"root"`
	ConfigPath string               `yaml:"config_path"`
	Cache      domain.CacheSettings `yaml:"cache"`
	Symbols    map[string]string    `yaml:"symbols"`
}

// Render returns the effective settings as YAML.
func (g *Generator) Render(settings *domain.Settings) ([]byte, error) {
	view := effectiveView{
		Root:       settings.Root,
		ConfigPath: settings.ConfigPath,
		Cache:      settings.Cache,
	}
	if settings.Mapping != nil {
		view.Symbols = settings.Mapping.Entries()
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return nil, zerr.Wrap(err, "failed to render settings")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to render settings")
	}
	return buf.Bytes(), nil
}
