package domain

import "go.trai.ch/zerr"

var (
	// ErrReadFailed is returned when a module source file cannot be read or decoded.
	ErrReadFailed = zerr.New("failed to read module source")

	// ErrSourceDecode is returned when a module source file is not valid UTF-8.
	ErrSourceDecode = zerr.New("module source is not valid UTF-8")

	// ErrCompileFailed is returned when the host compiler rejects translated source,
	// including after the fallback compile.
	ErrCompileFailed = zerr.New("failed to compile module")

	// ErrExecutionFailed is returned when a compiled module raises during execution.
	ErrExecutionFailed = zerr.New("failed to execute module")

	// ErrModuleNotFound is returned when no registered resolver can locate a module.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrImportCycle is returned when a module imports itself, directly or transitively.
	ErrImportCycle = zerr.New("import cycle detected")

	// ErrInvalidModuleName is returned when a logical module name cannot be mapped to a path.
	ErrInvalidModuleName = zerr.New("invalid module name")

	// ErrInvalidSymbol is returned when a custom symbol entry is malformed.
	ErrInvalidSymbol = zerr.New("invalid custom symbol")

	// ErrArtifactCorrupt is returned when a cached artifact fails header, hash or payload checks.
	ErrArtifactCorrupt = zerr.New("compiled artifact is corrupt")

	// ErrPersistFailed is returned when a batch of artifacts cannot be written to disk.
	ErrPersistFailed = zerr.New("failed to persist compiled artifacts")

	// ErrStoreCreateFailed is returned when the artifact directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create artifact store directory")

	// ErrStoreReadFailed is returned when a cached artifact cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read compiled artifact")

	// ErrStoreClosed is returned when writing to an artifact store after it was closed.
	ErrStoreClosed = zerr.New("artifact store is closed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigWriteFailed is returned when the default config file cannot be written.
	ErrConfigWriteFailed = zerr.New("failed to write config file")

	// ErrConfigExists is returned when `config init` would overwrite an existing file.
	ErrConfigExists = zerr.New("config file already exists")

	// ErrInvalidSetting is returned when a configuration value is out of range.
	ErrInvalidSetting = zerr.New("invalid configuration value")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrCacheMiss is returned when a requested item is not found in the cache.
	ErrCacheMiss = zerr.New("cache miss")
)
