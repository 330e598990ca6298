package domain

import (
	"runtime"
	"time"
)

const (
	// DefaultMaxSize is the default bound of every in-memory cache.
	DefaultMaxSize = 512
	// DefaultBatchSize is the default number of pending artifacts that triggers a flush.
	DefaultBatchSize = 5
	// DefaultMmapThreshold is the file size above which sources are memory-mapped.
	DefaultMmapThreshold = 8 * 1024
	// DefaultMaxFileRetries is the number of retries for transient read failures.
	DefaultMaxFileRetries = 3
	// DefaultRetryBaseDelay is the first backoff delay for transient read failures.
	DefaultRetryBaseDelay = 10 * time.Millisecond

	posixBufferSize   = 128 * 1024
	windowsBufferSize = 64 * 1024
)

// ValidationSettings controls integrity checks and symbol validation.
type ValidationSettings struct {
	// Enabled gates the payload checksum verification on artifact loads.
	Enabled bool `yaml:"enabled"`
	// Strict turns an invalid custom symbol into a configuration error.
	Strict bool `yaml:"strict"`
}

// CacheSettings holds the cache tunables.
type CacheSettings struct {
	Path           string             `yaml:"cache_path"`
	MaxSize        int                `yaml:"max_size"`
	BatchSize      int                `yaml:"batch_size"`
	MmapThreshold  int64              `yaml:"mmap_threshold"`
	BufferSize     int                `yaml:"buffer_size"`
	MaxFileRetries int                `yaml:"max_file_retries"`
	RetryBaseDelay time.Duration      `yaml:"retry_base_delay"`
	Validation     ValidationSettings `yaml:"validation"`
}

// Settings is the effective engine configuration.
type Settings struct {
	// Root is the project root: the directory holding the config directory,
	// or the working directory when no config file exists.
	Root string `yaml:"root"`
	// ConfigPath is the config file in use, empty when none was found.
	ConfigPath string `yaml:"config_path,omitempty"`
	// Symbols are the custom native -> alternate overrides as written in the file.
	Symbols map[string]string `yaml:"symbols,omitempty"`
	Cache   CacheSettings     `yaml:"cache"`
	// Mapping is the effective symbol table after overrides.
	Mapping *Mapping `yaml:"-"`
}

// DefaultBufferSize returns the read buffer size for the current platform.
func DefaultBufferSize() int {
	if runtime.GOOS == "windows" {
		return windowsBufferSize
	}
	return posixBufferSize
}

// DefaultCacheSettings returns the built-in cache tunables.
func DefaultCacheSettings() CacheSettings {
	return CacheSettings{
		Path:           CacheDirName,
		MaxSize:        DefaultMaxSize,
		BatchSize:      DefaultBatchSize,
		MmapThreshold:  DefaultMmapThreshold,
		BufferSize:     DefaultBufferSize(),
		MaxFileRetries: DefaultMaxFileRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		Validation:     ValidationSettings{Enabled: true},
	}
}

// DefaultSettings returns settings rooted at root with no overrides.
func DefaultSettings(root string) *Settings {
	return &Settings{
		Root:    root,
		Cache:   DefaultCacheSettings(),
		Mapping: DefaultMapping(),
	}
}
