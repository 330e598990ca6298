package domain

import "path/filepath"

const (
	// Symbol is the engine's badge character.
	Symbol = "φ"

	// SourceExt is the extension of alternate-syntax module files.
	SourceExt = "." + Symbol

	// PackageIndexName is the file that marks a directory as a package.
	PackageIndexName = "__init__" + SourceExt

	// ArtifactExt is the extension of compiled artifact files.
	ArtifactExt = SourceExt + "ca"

	// TempExt is the suffix of artifact files that are still being written.
	TempExt = ".tmp"

	// LockExt is the suffix of advisory lock files inside the cache root.
	LockExt = ".lock"

	// FlushLockName is the advisory lock that serializes artifact flushes
	// across processes. It is never removed, since other processes may hold it.
	FlushLockName = "flush" + LockExt

	// MainModuleName is the name the entry module executes under.
	MainModuleName = "__main__"

	// ConfigDirName is the name of the project configuration directory.
	ConfigDirName = ".(" + Symbol + ")"

	// AltConfigDirName is the ASCII-only alternative configuration directory.
	AltConfigDirName = ".phi"

	// ConfigFileName is the JSON configuration file inside a configuration directory.
	ConfigFileName = "custom_symbols.json"

	// YAMLConfigFileName is the YAML configuration file inside a configuration directory.
	YAMLConfigFileName = "custom_symbols.yaml"

	// CacheDirName is the default name of the cache root directory.
	CacheDirName = ".(" + Symbol + ")cache"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// ConfigCandidates returns the configuration files looked up in a directory, in priority order.
func ConfigCandidates(dir string) []string {
	return []string{
		filepath.Join(dir, ConfigDirName, ConfigFileName),
		filepath.Join(dir, AltConfigDirName, ConfigFileName),
		filepath.Join(dir, ConfigDirName, YAMLConfigFileName),
		filepath.Join(dir, AltConfigDirName, YAMLConfigFileName),
	}
}

// DefaultConfigPath returns the path `phi config init` writes to.
// It joins dir, .(φ) and custom_symbols.json.
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, ConfigDirName, ConfigFileName)
}
