// Package loader reads mojom files from disk and resolves their imports.
//
// A Loader is a module.Resolver: imports are looked up next to the importing
// file first and then in each import path, in order. Every file is parsed,
// built and packed once; later imports of the same absolute path share the
// cached module.
//
//	l := loader.New(loader.WithImportPaths("third_party/mojo"))
//	m, err := l.Load("services/echo.mojom")
//
// A Loader is not safe for concurrent use.
package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl"
	"github.com/wippyai/mojom/ir"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/pack"
)

type Loader struct {
	paths   []string
	dialect idl.Dialect

	cache map[string]*module.Module
	// stack holds the absolute paths currently being built, outermost first.
	stack []string
}

type Option func(*Loader)

// WithImportPaths appends directories searched for imports.
func WithImportPaths(paths ...string) Option {
	return func(l *Loader) {
		l.paths = append(l.paths, paths...)
	}
}

// WithDialect selects the grammar used for every file.
func WithDialect(d idl.Dialect) Option {
	return func(l *Loader) {
		l.dialect = d
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		dialect: idl.Modern,
		cache:   make(map[string]*module.Module),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds and packs the file at path together with everything it
// imports.
func (l *Loader) Load(path string) (*module.Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Load("resolve "+path, err)
	}
	return l.load(path, abs)
}

// LoadAll loads each path in turn. Failures are collected so that every
// broken file is reported; the returned slice holds the modules that loaded.
func (l *Loader) LoadAll(paths ...string) ([]*module.Module, error) {
	var (
		mods []*module.Module
		errs error
	)
	for _, p := range paths {
		m, err := l.Load(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		mods = append(mods, m)
	}
	return mods, errs
}

// LoadSource builds source as if it were the file filename. Its imports are
// resolved relative to filename's directory and the import paths. The
// result is not cached.
func (l *Loader) LoadSource(filename, source string) (*module.Module, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, errors.Load("resolve "+filename, err)
	}
	l.stack = append(l.stack, abs)
	defer l.pop()
	return l.build(filename, source)
}

// Resolve implements module.Resolver.
func (l *Loader) Resolve(importer, filename string) (*module.Module, error) {
	path, err := l.find(importer, filename)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Load("resolve "+path, err)
	}
	return l.load(path, abs)
}

// Files returns the absolute paths of every cached module, sorted.
func (l *Loader) Files() []string {
	files := make([]string, 0, len(l.cache))
	for abs := range l.cache {
		files = append(files, abs)
	}
	sort.Strings(files)
	return files
}

// Reset drops the cache so that the next Load rereads every file.
func (l *Loader) Reset() {
	l.cache = make(map[string]*module.Module)
}

// find returns the first candidate for filename that exists.
func (l *Loader) find(importer, filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	dirs := make([]string, 0, len(l.paths)+1)
	if importer != "" {
		dirs = append(dirs, filepath.Dir(importer))
	}
	dirs = append(dirs, l.paths...)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, filename)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.New(errors.PhaseLoad, errors.KindNotFound).
		Path(importer).
		Detail("import %q not found in %s", filename, strings.Join(dirs, ", ")).
		Build()
}

func (l *Loader) load(path, abs string) (*module.Module, error) {
	if m, ok := l.cache[abs]; ok {
		return m, nil
	}
	for i, p := range l.stack {
		if p == abs {
			chain := append(append([]string(nil), l.stack[i:]...), abs)
			return nil, errors.New(errors.PhaseLoad, errors.KindCycle).
				Path(chain...).
				Detail("import cycle: %s", strings.Join(chain, " -> ")).
				Build()
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Path(path).
			Detail("read %s", path).
			Cause(err).
			Build()
	}

	l.stack = append(l.stack, abs)
	defer l.pop()
	m, err := l.build(path, string(data))
	if err != nil {
		return nil, err
	}
	l.cache[abs] = m
	return m, nil
}

func (l *Loader) pop() {
	l.stack = l.stack[:len(l.stack)-1]
}

// build runs the pipeline for one file. Imports re-enter the loader through
// Resolve.
func (l *Loader) build(filename, source string) (*module.Module, error) {
	tree, err := idl.ParseDialect(filename, source, l.dialect)
	if err != nil {
		return nil, err
	}
	rec, err := ir.Translate(tree, filename)
	if err != nil {
		return nil, err
	}
	m, err := module.Build(rec, l)
	if err != nil {
		return nil, err
	}
	pack.Module(m)
	Logger().Debug("loaded",
		zap.String("file", filename),
		zap.Int("imports", len(m.Imports)),
		zap.Int("depth", len(l.stack)))
	return m, nil
}
