package mojom

import (
	"go.uber.org/zap"

	"github.com/wippyai/mojom/handle"
	"github.com/wippyai/mojom/idl"
	"github.com/wippyai/mojom/ir"
	"github.com/wippyai/mojom/loader"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/pack"
	"github.com/wippyai/mojom/serialization"
)

type options struct {
	dialect  idl.Dialect
	paths    []string
	resolver module.Resolver
}

// Option configures Compile and CompileFile.
type Option func(*options)

// WithDialect selects the grammar variant. The default is idl.Modern.
func WithDialect(d idl.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// WithImportPaths adds directories searched for imports.
func WithImportPaths(paths ...string) Option {
	return func(o *options) { o.paths = append(o.paths, paths...) }
}

// WithResolver resolves imports through r instead of the file system. It is
// ignored by CompileFile.
func WithResolver(r module.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

func apply(opts []Option) options {
	o := options{dialect: idl.Modern}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compile runs source through the whole pipeline and returns the packed
// module. filename names the source in diagnostics and anchors relative
// imports.
func Compile(filename, source string, opts ...Option) (*module.Module, error) {
	o := apply(opts)
	if o.resolver == nil {
		return newLoader(o).LoadSource(filename, source)
	}

	tree, err := idl.ParseDialect(filename, source, o.dialect)
	if err != nil {
		return nil, err
	}
	rec, err := ir.Translate(tree, filename)
	if err != nil {
		return nil, err
	}
	m, err := module.Build(rec, o.resolver)
	if err != nil {
		return nil, err
	}
	pack.Module(m)
	return m, nil
}

// CompileFile loads path and its imports from disk.
func CompileFile(path string, opts ...Option) (*module.Module, error) {
	return newLoader(apply(opts)).Load(path)
}

// CompileIR builds and packs a module from an IR record, as written by
// ir.Marshal. Imports are resolved through r, which may be nil when the
// record has none.
func CompileIR(data []byte, r module.Resolver) (*module.Module, error) {
	rec, err := ir.Load(data)
	if err != nil {
		return nil, err
	}
	m, err := module.Build(rec, r)
	if err != nil {
		return nil, err
	}
	pack.Module(m)
	return m, nil
}

func newLoader(o options) *loader.Loader {
	return loader.New(loader.WithDialect(o.dialect), loader.WithImportPaths(o.paths...))
}

// SetLogger installs l in every package of the toolchain.
func SetLogger(l *zap.Logger) {
	idl.SetLogger(l)
	ir.SetLogger(l)
	module.SetLogger(l)
	pack.SetLogger(l)
	serialization.SetLogger(l)
	loader.SetLogger(l)
	handle.SetLogger(l)
}
