// Package loader implements the module-loading pipeline: read, translate,
// consult the artifact cache, compile on a miss, execute and persist.
package loader

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.Importer = (*Loader)(nil)

// Options are the collaborators of a Loader.
type Options struct {
	Registry   *Registry
	Reader     ports.SourceReader
	Translator ports.Translator
	Compiler   ports.Compiler
	Caches     *CacheContext
	Logger     ports.Logger
	// Verify enables the payload checksum check when decoding artifacts.
	Verify bool
	// NewResolver builds a resolver for an additional search root.
	NewResolver func(root string) ports.ModuleResolver
}

// Stats counts pipeline outcomes.
type Stats struct {
	// Hits are artifacts that were loaded instead of compiled.
	Hits int64
	// Misses are lookups without a usable artifact.
	Misses int64
	// Corrupt are artifacts that passed the header check but failed to decode.
	Corrupt int64
	// Compiles counts successful compiles, fallback compiles included.
	Compiles int64
	// Fallbacks counts compiles that needed the lenient dialect.
	Fallbacks int64
	// Executions counts module executions.
	Executions int64
}

type counters struct {
	hits, misses, corrupt, compiles, fallbacks, executions atomic.Int64
}

// moduleState is an entry of the module table. done is closed once mod or err is set.
type moduleState struct {
	done chan struct{}
	mod  *domain.Module
	err  error
}

// Loader loads modules on demand. It is safe for concurrent use.
type Loader struct {
	registry    *Registry
	reader      ports.SourceReader
	translator  ports.Translator
	compiler    ports.Compiler
	caches      *CacheContext
	log         ports.Logger
	verify      bool
	newResolver func(root string) ports.ModuleResolver

	compiles singleflight.Group

	mu      sync.Mutex
	modules map[string]*moduleState

	stats counters
}

// New creates a Loader.
func New(opts Options) *Loader {
	return &Loader{
		registry:    opts.Registry,
		reader:      opts.Reader,
		translator:  opts.Translator,
		compiler:    opts.Compiler,
		caches:      opts.Caches,
		log:         opts.Logger,
		verify:      opts.Verify,
		newResolver: opts.NewResolver,
		modules:     make(map[string]*moduleState),
	}
}

// Stats returns a snapshot of the pipeline counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Hits:       l.stats.hits.Load(),
		Misses:     l.stats.misses.Load(),
		Corrupt:    l.stats.corrupt.Load(),
		Compiles:   l.stats.compiles.Load(),
		Fallbacks:  l.stats.fallbacks.Load(),
		Executions: l.stats.executions.Load(),
	}
}

// Roots returns the installed search roots in priority order.
func (l *Loader) Roots() []string {
	return l.registry.Roots()
}

// AddRoot installs a resolver for dir and returns it. When dir is already a
// root, the existing resolver is returned.
func (l *Loader) AddRoot(dir string) ports.ModuleResolver {
	res, _ := l.registry.Install(l.newResolver(dir))
	return res
}

// Resolve finds the load spec for name across every root.
func (l *Loader) Resolve(name string) (*domain.LoadSpec, bool) {
	return l.registry.Resolve(name)
}

// Close flushes pending artifacts and releases the caches.
func (l *Loader) Close() error {
	return l.caches.Close()
}

// Run executes spec as the entry module with the given program arguments.
// The entry module is not entered into the module table.
func (l *Loader) Run(ctx context.Context, spec *domain.LoadSpec, args []string) (*domain.Module, error) {
	mod := &domain.Module{Name: spec.Name, Spec: spec, Main: true, Args: args}
	if err := l.execute(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// Import returns the module called name, loading it on first use. Concurrent
// imports of the same module wait for the first one. Importing a module that
// is still executing on the same call path is an import cycle.
func (l *Loader) Import(ctx context.Context, name string) (*domain.Module, error) {
	stack := stackFrom(ctx)
	if stack.contains(name) {
		return nil, zerr.With(zerr.Wrap(domain.ErrImportCycle, stack.cycle(name)), "module", name)
	}

	l.mu.Lock()
	if st, ok := l.modules[name]; ok {
		l.mu.Unlock()
		select {
		case <-st.done:
			return st.mod, st.err
		case <-ctx.Done():
			return nil, zerr.With(zerr.Wrap(ctx.Err(), "import interrupted"), "module", name)
		}
	}
	st := &moduleState{done: make(chan struct{})}
	l.modules[name] = st
	l.mu.Unlock()

	st.mod, st.err = l.importUncached(ctx, name)

	if st.err != nil {
		l.mu.Lock()
		delete(l.modules, name)
		l.mu.Unlock()
	}
	close(st.done)
	return st.mod, st.err
}

func (l *Loader) importUncached(ctx context.Context, name string) (*domain.Module, error) {
	spec, ok := l.registry.Resolve(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "no resolver located the module"), "module", name)
	}

	mod := &domain.Module{Name: name, Spec: spec}
	if err := l.execute(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

func (l *Loader) execute(ctx context.Context, mod *domain.Module) error {
	prog, _, err := l.program(ctx, mod.Spec)
	if err != nil {
		return err
	}

	l.stats.executions.Add(1)
	return prog.Execute(withModule(ctx, mod.Name), mod, l)
}

// Precompile fills the artifact cache for spec without executing it.
// It reports whether a usable artifact already existed.
func (l *Loader) Precompile(ctx context.Context, spec *domain.LoadSpec) (bool, error) {
	_, cached, err := l.program(ctx, spec)
	return cached, err
}

// Translate returns the host-native text of the source file at path.
func (l *Loader) Translate(ctx context.Context, path string) (string, error) {
	canonical, err := l.reader.Canonicalize(path)
	if err != nil {
		return "", &domain.SourceError{Kind: domain.ErrReadFailed, Path: path, Err: err}
	}
	raw, err := l.source(ctx, "", canonical)
	if err != nil {
		return "", err
	}
	translated, _ := l.translate(raw, l.translator.Fingerprint())
	return translated, nil
}

// program returns a runnable program for spec and whether it came from the artifact cache.
func (l *Loader) program(ctx context.Context, spec *domain.LoadSpec) (ports.Program, bool, error) {
	canonical, err := l.reader.Canonicalize(spec.Path)
	if err != nil {
		return nil, false, &domain.SourceError{Kind: domain.ErrReadFailed, Module: spec.Name, Path: spec.Path, Err: err}
	}

	raw, err := l.source(ctx, spec.Name, canonical)
	if err != nil {
		return nil, false, err
	}
	table := l.translator.Fingerprint()
	translated, hash := l.translate(raw, table)
	key := domain.ArtifactKey{SourceHash: hash, Table: table}

	artifactPath := l.caches.Store.PathFor(canonical)
	if prog, ok := l.cached(spec.Name, artifactPath, key); ok {
		return prog, true, nil
	}

	flight := artifactPath + ":" + strconv.FormatUint(hash, 16) + ":" + strconv.FormatUint(table, 16)
	v, err, _ := l.compiles.Do(flight, func() (any, error) {
		return l.compileAndPersist(canonical, translated, artifactPath, key)
	})
	if err != nil {
		return nil, false, attachModule(err, spec.Name)
	}
	return v.(ports.Program), false, nil
}

// source returns the raw text of canonical, reading it on a cache miss.
func (l *Loader) source(ctx context.Context, name, canonical string) (string, error) {
	if raw, ok := l.caches.Sources.Get(canonical); ok {
		return raw, nil
	}

	raw, err := l.reader.Read(ctx, canonical)
	if err != nil {
		return "", &domain.SourceError{Kind: domain.ErrReadFailed, Module: name, Path: canonical, Err: err}
	}
	l.caches.Sources.Put(canonical, raw)
	return raw, nil
}

// translate returns the translated text of raw and the hash of raw.
// Translations are cached per source hash and symbol table.
func (l *Loader) translate(raw string, table uint64) (string, uint64) {
	hash := xxhash.Sum64String(raw)
	ck := translationKey(hash, table)
	if translated, ok := l.caches.Translated.Get(ck); ok {
		return translated, hash
	}

	translated := l.translator.Translate(raw)
	l.caches.Translated.Put(ck, translated)
	return translated, hash
}

func translationKey(sourceHash, table uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], sourceHash)
	binary.LittleEndian.PutUint64(buf[8:], table)
	return xxhash.Sum64(buf[:])
}

// cached decodes a valid artifact. A header-valid artifact that fails to
// decode, or whose lenient flag disagrees with the decoded dialect, is logged
// and treated as a miss.
func (l *Loader) cached(name, artifactPath string, key domain.ArtifactKey) (ports.Program, bool) {
	if !l.caches.Store.IsValid(artifactPath, key) {
		l.stats.misses.Add(1)
		l.log.Debug(fmt.Sprintf("artifact miss for %s", name))
		return nil, false
	}

	header, payload, err := l.caches.Store.Load(artifactPath)
	if err == nil {
		var prog ports.Program
		if prog, err = l.compiler.Decode(payload, l.verify); err == nil {
			lenient := prog.Dialect() == domain.DialectLenient
			if header.Flags.Has(domain.FlagLenient) == lenient {
				l.stats.hits.Add(1)
				l.log.Debug(fmt.Sprintf("artifact hit for %s", name))
				return prog, true
			}
			err = zerr.Wrap(domain.ErrArtifactCorrupt, "lenient flag does not match the compiled dialect")
		}
	}

	l.stats.corrupt.Add(1)
	l.stats.misses.Add(1)
	l.log.Warn(fmt.Sprintf("cached artifact for %s is unusable, recompiling: %v", name, err))
	return nil, false
}

// compileAndPersist compiles strictly, falls back to the lenient dialect once,
// and queues the artifact. Persistence problems are logged, never returned.
func (l *Loader) compileAndPersist(canonical, translated, artifactPath string, key domain.ArtifactKey) (ports.Program, error) {
	prog, err := l.compiler.Compile(canonical, translated, domain.DialectStrict)
	if err != nil {
		l.log.Warn(fmt.Sprintf("strict compile of %s failed, retrying lenient: %v", canonical, err))

		var fallbackErr error
		prog, fallbackErr = l.compiler.Compile(canonical, translated, domain.DialectLenient)
		if fallbackErr != nil {
			return nil, fallbackErr
		}
		l.stats.fallbacks.Add(1)
	}
	l.stats.compiles.Add(1)

	payload, err := prog.Encode()
	if err != nil {
		l.log.Warn(fmt.Sprintf("failed to encode %s, artifact not cached: %v", canonical, err))
		return prog, nil
	}

	var flags domain.ArtifactFlags
	if prog.Dialect() == domain.DialectLenient {
		flags |= domain.FlagLenient
	}
	// The store reports dropped batches itself.
	if err := l.caches.Store.Enqueue(artifactPath, payload, key, flags); err != nil && !errors.Is(err, domain.ErrPersistFailed) {
		l.log.Warn(fmt.Sprintf("failed to queue artifact for %s: %v", canonical, err))
	}
	return prog, nil
}

// attachModule names the module on a SourceError without mutating a value
// that singleflight may have shared with other callers.
func attachModule(err error, name string) error {
	var se *domain.SourceError
	if !errors.As(err, &se) || se.Module != "" {
		return err
	}
	named := *se
	named.Module = name
	return &named
}
