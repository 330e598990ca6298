package config

// File represents the structure of custom_symbols.json (or .yaml).
// Absent fields keep the value they had before the file was applied.
type File struct {
	FileExtension string            `json:"file_extension,omitempty" yaml:"file_extension,omitempty"`
	Symbols       map[string]string `json:"symbols,omitempty"        yaml:"symbols,omitempty"`
	Validation    *ValidationDTO    `json:"validation,omitempty"     yaml:"validation,omitempty"`
	Cache         *CacheDTO         `json:"cache,omitempty"          yaml:"cache,omitempty"`
}

// CacheDTO represents the cache block of the configuration file.
type CacheDTO struct {
	CachePath      *string  `json:"cache_path,omitempty"       yaml:"cache_path,omitempty"`
	MaxSize        *int     `json:"max_size,omitempty"         yaml:"max_size,omitempty"`
	BatchSize      *int     `json:"batch_size,omitempty"       yaml:"batch_size,omitempty"`
	MmapThreshold  *int64   `json:"mmap_threshold,omitempty"   yaml:"mmap_threshold,omitempty"`
	BufferSize     *int     `json:"buffer_size,omitempty"      yaml:"buffer_size,omitempty"`
	MaxFileRetries *int     `json:"max_file_retries,omitempty" yaml:"max_file_retries,omitempty"`
	// RetryBaseDelay is in seconds.
	RetryBaseDelay *float64       `json:"retry_base_delay,omitempty" yaml:"retry_base_delay,omitempty"`
	Validation     *ValidationDTO `json:"validation,omitempty"       yaml:"validation,omitempty"`
}

// ValidationDTO represents a validation block.
type ValidationDTO struct {
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Strict  *bool `json:"strict,omitempty"  yaml:"strict,omitempty"`
}
