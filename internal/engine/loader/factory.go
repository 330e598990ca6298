package loader

import (
	"fmt"

	"go.trai.ch/phi/internal/adapters/artifact"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/adapters/fs"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/adapters/lifecycle"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/adapters/memcache"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/adapters/translator" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
)

// Factory builds loaders for resolved settings. The settings depend on the
// working directory, so loaders are built per invocation rather than as graph nodes.
type Factory struct {
	Logger    ports.Logger
	Compiler  ports.Compiler
	Lifecycle ports.Lifecycle
}

// NewFactory creates a Factory.
func NewFactory(log ports.Logger, compiler ports.Compiler, hooks ports.Lifecycle) *Factory {
	return &Factory{Logger: log, Compiler: compiler, Lifecycle: hooks}
}

// NewCacheContext creates the caches and opens the artifact store described by settings.
func (f *Factory) NewCacheContext(settings *domain.Settings) (*CacheContext, error) {
	size := settings.Cache.MaxSize
	store, err := artifact.Open(settings.Cache.Path, f.Compiler.Identity(), settings.Cache.BatchSize, f.Logger)
	if err != nil {
		return nil, err
	}
	return &CacheContext{
		Sources:    memcache.New[string, string](size),
		Translated: memcache.New[uint64, string](size),
		Specs:      memcache.New[domain.SpecKey, *domain.LoadSpec](size),
		Store:      store,
	}, nil
}

// New creates a Loader rooted at settings.Root. Flushing the artifact store
// and removing transient cache files are registered as shutdown hooks.
func (f *Factory) New(settings *domain.Settings) (*Loader, error) {
	caches, err := f.NewCacheContext(settings)
	if err != nil {
		return nil, err
	}

	cachePath := settings.Cache.Path
	f.Lifecycle.Register("clean transient cache files", func() error {
		n, err := lifecycle.CleanTransient(cachePath)
		if n > 0 {
			f.Logger.Debug(fmt.Sprintf("removed %d transient cache files", n))
		}
		return err
	})
	f.Lifecycle.Register("flush artifacts", caches.Close)

	canon := memcache.New[string, string](settings.Cache.MaxSize)
	newResolver := func(root string) ports.ModuleResolver {
		return fs.NewResolver(root, caches.Specs)
	}

	registry := NewRegistry(f.Logger)
	registry.Install(newResolver(settings.Root))

	return New(Options{
		Registry:    registry,
		Reader:      fs.NewReader(fs.ReaderOptionsFrom(settings.Cache), canon),
		Translator:  translator.New(settings.Mapping),
		Compiler:    f.Compiler,
		Caches:      caches,
		Logger:      f.Logger,
		Verify:      settings.Cache.Validation.Enabled,
		NewResolver: newResolver,
	}), nil
}
