// Package app implements the application layer for phi.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/phi/internal/adapters/fs" //nolint:depguard // Wired in app layer
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/phi/internal/engine/loader"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// logConfigurer is implemented by loggers whose level and format can change at runtime.
type logConfigurer interface {
	SetLevel(level slog.Level)
	SetJSON(enable bool)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	generator    ports.ConfigGenerator
	loaders      *loader.Factory
	walker       *fs.Walker
	logger       ports.Logger
	getwd        func() (string, error)
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	generator ports.ConfigGenerator,
	loaders *loader.Factory,
	walker *fs.Walker,
	log ports.Logger,
) *App {
	return &App{
		configLoader: configLoader,
		generator:    generator,
		loaders:      loaders,
		walker:       walker,
		logger:       log,
		getwd:        os.Getwd,
	}
}

// WithWorkDir makes the App resolve relative targets and discover
// configuration from dir instead of the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// ConfigureLogging switches the logger to debug level and/or JSON output.
func (a *App) ConfigureLogging(verbose, jsonOutput bool) {
	lc, ok := a.logger.(logConfigurer)
	if !ok {
		return
	}
	if verbose {
		lc.SetLevel(slog.LevelDebug)
	}
	lc.SetJSON(jsonOutput)
}

// Run executes target as the entry module. A target naming a source file runs
// that file with its folder as an extra search root; anything else is a dotted
// module name resolved below the project root and the working directory.
func (a *App) Run(ctx context.Context, target string, args []string) error {
	cwd, err := a.workDir()
	if err != nil {
		return err
	}
	if isSourcePath(cwd, target) {
		return a.runFile(ctx, cwd, target, args)
	}
	return a.runModule(ctx, cwd, target, args)
}

func (a *App) runFile(ctx context.Context, cwd, target string, args []string) error {
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	dir := filepath.Dir(path)

	l, _, err := a.openLoader(dir)
	if err != nil {
		return err
	}
	defer a.closeLoader(l)

	if !slices.Contains(l.Roots(), dir) {
		l.AddRoot(dir)
	}

	spec := &domain.LoadSpec{
		Name: strings.TrimSuffix(filepath.Base(path), domain.SourceExt),
		Path: path,
	}
	_, err = l.Run(ctx, spec, args)
	return err
}

func (a *App) runModule(ctx context.Context, cwd, name string, args []string) error {
	if _, ok := domain.ModuleNameParts(name); !ok {
		return zerr.With(zerr.Wrap(domain.ErrInvalidModuleName, "expected a source file or a dotted module name"), "target", name)
	}

	l, _, err := a.openLoader(cwd)
	if err != nil {
		return err
	}
	defer a.closeLoader(l)

	if !slices.Contains(l.Roots(), cwd) {
		l.AddRoot(cwd)
	}

	spec, ok := l.Resolve(name)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "no module file or package below the search roots"), "module", name)
	}
	_, err = l.Run(ctx, spec, args)
	return err
}

// CompileOptions configuration for the Compile method.
type CompileOptions struct {
	// Jobs bounds the concurrent compiles. Zero means one per CPU.
	Jobs int
}

// CompileReport summarizes a Compile run.
type CompileReport struct {
	Modules int
	Cached  int
	Failed  int
}

// Compile fills the artifact cache for every module below dir without
// executing anything. Failing modules do not stop the others; their errors
// are returned joined.
func (a *App) Compile(ctx context.Context, dir string, opts CompileOptions) (CompileReport, error) {
	var report CompileReport

	dir, err := a.absDir(dir)
	if err != nil {
		return report, err
	}

	l, _, err := a.openLoader(dir)
	if err != nil {
		return report, err
	}
	defer a.closeLoader(l)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(jobs)

	for mf := range a.walker.WalkModules(dir) {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cached, err := l.Precompile(ctx, &domain.LoadSpec{Name: mf.Name, Path: mf.Path})

			mu.Lock()
			defer mu.Unlock()
			report.Modules++
			switch {
			case err != nil:
				report.Failed++
				errs = append(errs, err)
			case cached:
				report.Cached++
			default:
				a.logger.Debug(fmt.Sprintf("compiled %s", mf.Name))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, zerr.Wrap(err, "compile interrupted")
	}

	a.logger.Info(fmt.Sprintf("compiled %d modules (%d cached, %d failed)", report.Modules, report.Cached, report.Failed))
	return report, errors.Join(errs...)
}

// Translate returns the host-native text of the source file at path.
func (a *App) Translate(ctx context.Context, path string) (string, error) {
	cwd, err := a.workDir()
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	l, _, err := a.openLoader(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	defer a.closeLoader(l)

	return l.Translate(ctx, path)
}

// Clean removes the artifact cache directory of the current project.
func (a *App) Clean(_ context.Context) error {
	cwd, err := a.workDir()
	if err != nil {
		return err
	}
	settings, err := a.configLoader.Load(cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	path := settings.Cache.Path
	a.logger.Info(fmt.Sprintf("removing artifact cache %s...", path))
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove artifact cache"), "path", path)
	}
	a.logger.Info("removed artifact cache")
	return nil
}

// ConfigInit writes the default configuration at the project root.
func (a *App) ConfigInit(force bool) (string, error) {
	root, err := a.projectRoot()
	if err != nil {
		return "", err
	}
	return a.generator.Init(root, force)
}

// ConfigReset removes the configuration of the project.
func (a *App) ConfigReset() (bool, error) {
	root, err := a.projectRoot()
	if err != nil {
		return false, err
	}
	return a.generator.Reset(root)
}

// ConfigShow renders the effective settings.
func (a *App) ConfigShow() ([]byte, error) {
	cwd, err := a.workDir()
	if err != nil {
		return nil, err
	}
	settings, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return a.generator.Render(settings)
}

func (a *App) projectRoot() (string, error) {
	cwd, err := a.workDir()
	if err != nil {
		return "", err
	}
	root, _, err := a.configLoader.DiscoverRoot(cwd)
	return root, err
}

func (a *App) workDir() (string, error) {
	cwd, err := a.getwd()
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	return cwd, nil
}

func (a *App) absDir(dir string) (string, error) {
	cwd, err := a.workDir()
	if err != nil {
		return "", err
	}
	switch {
	case dir == "":
		return cwd, nil
	case filepath.IsAbs(dir):
		return filepath.Clean(dir), nil
	default:
		return filepath.Join(cwd, dir), nil
	}
}

func (a *App) openLoader(dir string) (*loader.Loader, *domain.Settings, error) {
	settings, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	l, err := a.loaders.New(settings)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to open artifact cache")
	}
	return l, settings, nil
}

// closeLoader flushes pending artifacts. A failed flush only costs a later recompile.
func (a *App) closeLoader(l *loader.Loader) {
	if err := l.Close(); err != nil {
		a.logger.Warn(fmt.Sprintf("compiled artifacts were not persisted: %v", err))
	}
	s := l.Stats()
	a.logger.Debug(fmt.Sprintf(
		"cache: %d hits, %d misses, %d compiles, %d fallbacks, %d corrupt",
		s.Hits, s.Misses, s.Compiles, s.Fallbacks, s.Corrupt,
	))
}

// isSourcePath reports whether target names a file rather than a module.
func isSourcePath(cwd, target string) bool {
	if strings.HasSuffix(target, domain.SourceExt) || strings.ContainsAny(target, `/\`) {
		return true
	}
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
