package module

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl"
	"github.com/wippyai/mojom/ir"
)

// Resolver supplies already built modules for import statements. importer
// is the name of the module containing the import.
type Resolver interface {
	Resolve(importer, filename string) (*Module, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(importer, filename string) (*Module, error)

func (f ResolverFunc) Resolve(importer, filename string) (*Module, error) {
	return f(importer, filename)
}

// Build turns an IR record into a resolved module. Imports are resolved
// through r first, so their kinds are visible to local definitions. Failures
// that do not depend on each other are reported together.
func Build(rec *ir.Module, r Resolver) (*Module, error) {
	b := &builder{
		rec: rec,
		mod: NewModule(rec.Name, rec.Namespace),
	}
	b.mod.Attributes = mapAttributes(rec.Attributes)
	b.root = newScope(nil)
	b.global = newScope(b.root)

	b.resolveImports(r)
	if b.err != nil {
		// Local definitions may reference anything an import provides.
		return nil, b.err
	}
	b.declare()
	b.defineStructs()
	b.defineInterfaces()
	b.defineConsts(b.global, "", rec.Consts, &b.mod.Consts)
	b.evaluate()

	if b.err != nil {
		Logger().Debug("build failed", zap.String("file", rec.Name), zap.Error(b.err))
		return nil, b.err
	}
	Logger().Debug("built module",
		zap.String("file", rec.Name),
		zap.String("namespace", rec.Namespace),
		zap.Int("kinds", len(b.mod.kinds)),
		zap.Int("structs", len(b.mod.Structs)),
		zap.Int("interfaces", len(b.mod.Interfaces)))
	return b.mod, nil
}

type builder struct {
	rec *ir.Module
	mod *Module
	err error

	// root holds names exported by imports; global holds the module's own.
	root   *scope
	global *scope

	importNamespaces []string
	structScopes     map[*Struct]*scope
	ifaceScopes      map[*Interface]*scope
	pending          []func()
}

func (b *builder) fail(err error) {
	b.err = multierr.Append(b.err, err)
}

func (b *builder) qualify(name string) string {
	if b.mod.Namespace == "" {
		return name
	}
	return b.mod.Namespace + "." + name
}

func (b *builder) resolveImports(r Resolver) {
	for _, imp := range b.rec.Imports {
		if r == nil {
			b.fail(errors.NotFound(errors.PhaseBuild, "import", imp.Filename))
			continue
		}
		dep, err := r.Resolve(b.rec.Name, imp.Filename)
		if err != nil {
			b.fail(errors.New(errors.PhaseBuild, errors.KindNotFound).
				Path(imp.Filename).
				Detail("unresolved import %q", imp.Filename).
				Cause(err).
				Build())
			continue
		}
		b.mod.Imports = append(b.mod.Imports, &Import{Filename: imp.Filename, Module: dep})
		b.importNamespaces = append(b.importNamespaces, dep.Namespace)

		// Only kinds the dependency declares itself; its own imports stay private.
		for spec, k := range dep.kinds {
			if declaredBy(k) != dep {
				continue
			}
			if existing, ok := b.mod.kinds[spec]; ok && existing != k {
				b.fail(errors.Duplicate(errors.PhaseBuild, "kind", spec))
				continue
			}
			b.mod.kinds[spec] = k
		}
		exportConsts(b.root, dep)
		Logger().Debug("resolved import",
			zap.String("file", b.rec.Name),
			zap.String("import", imp.Filename),
			zap.String("namespace", dep.Namespace))
	}
}

func declaredBy(k Kind) *Module {
	switch k := k.(type) {
	case *Struct:
		return k.Module
	case *Interface:
		return k.Module
	case *Enum:
		return k.Module
	}
	return nil
}

// exportConsts binds the evaluated constants of dep under their qualified names.
func exportConsts(sc *scope, dep *Module) {
	prefix := ""
	if dep.Namespace != "" {
		prefix = dep.Namespace + "."
	}
	bindValue := func(name string, v Value) {
		sc.bind(prefix+name, &binding{name: prefix + name, value: &v})
	}
	bindEnum := func(container string, e *Enum) {
		for _, f := range e.Fields {
			bindValue(container+e.Name+"."+f.Name, int64Value(f.Value))
		}
	}
	for _, c := range dep.Consts {
		bindValue(c.Name, c.Value)
	}
	for _, e := range dep.Enums {
		bindEnum("", e)
	}
	for _, s := range dep.Structs {
		for _, c := range s.Consts {
			bindValue(s.Name+"."+c.Name, c.Value)
		}
		for _, e := range s.Enums {
			bindEnum(s.Name+".", e)
		}
	}
	for _, iface := range dep.Interfaces {
		for _, c := range iface.Consts {
			bindValue(iface.Name+"."+c.Name, c.Value)
		}
		for _, e := range iface.Enums {
			bindEnum(iface.Name+".", e)
		}
	}
}

func (b *builder) register(k Kind, what string) {
	spec := k.Spec()
	if _, ok := b.mod.kinds[spec]; ok {
		b.fail(errors.Duplicate(errors.PhaseBuild, what, spec))
		return
	}
	b.mod.kinds[spec] = k
}

// declare creates every named kind before any field is resolved, so
// definitions may refer to each other regardless of order.
func (b *builder) declare() {
	b.structScopes = make(map[*Struct]*scope, len(b.rec.Structs))
	b.ifaceScopes = make(map[*Interface]*scope, len(b.rec.Interfaces))

	for _, rs := range b.rec.Structs {
		s := &Struct{
			Name:       rs.Name,
			Module:     b.mod,
			Attributes: mapAttributes(rs.Attributes),
			spec:       "x:" + b.qualify(rs.Name),
		}
		b.register(s, "struct")
		b.mod.Structs = append(b.mod.Structs, s)
		sc := newScope(b.global)
		b.structScopes[s] = sc
		s.Enums = b.declareEnums(sc, rs.Name+".", rs.Enums)
	}
	for _, ri := range b.rec.Interfaces {
		iface := &Interface{
			Name:       ri.Name,
			Module:     b.mod,
			Peer:       ri.Peer,
			Attributes: mapAttributes(ri.Attributes),
			spec:       "x:" + b.qualify(ri.Name),
		}
		b.register(iface, "interface")
		b.mod.Interfaces = append(b.mod.Interfaces, iface)
		sc := newScope(b.global)
		b.ifaceScopes[iface] = sc
		iface.Enums = b.declareEnums(sc, ri.Name+".", ri.Enums)
	}
	b.mod.Enums = b.declareEnums(b.global, "", b.rec.Enums)
}

// declareEnums registers the enums of one container. container is "" at
// module level or "Name." inside a struct or interface.
func (b *builder) declareEnums(sc *scope, container string, recs []ir.Enum) []*Enum {
	out := make([]*Enum, 0, len(recs))
	for _, re := range recs {
		e := &Enum{
			Name:   re.Name,
			Module: b.mod,
			spec:   "x:" + b.qualify(container+re.Name),
		}
		b.register(e, "enum")
		out = append(out, e)

		own := newScope(sc)
		var prev *binding
		for _, rf := range re.Fields {
			f := &EnumField{Name: rf.Name}
			e.Fields = append(e.Fields, f)
			bd := &binding{name: e.Name + "." + rf.Name, scope: own, enum: true, prev: prev}
			if rf.Value != "" {
				expr, err := idl.ParseExpr(rf.Value)
				if err != nil {
					b.fail(errors.Wrap(errors.PhaseBuild, errors.KindInvalidInput, err, "enum value "+bd.name))
				}
				bd.expr = expr
				f.Expr = expr
			}
			prev = bd

			own.bind(rf.Name, bd)
			sc.bind(e.Name+"."+rf.Name, bd)
			if _, taken := sc.names[rf.Name]; !taken {
				sc.bind(rf.Name, bd)
			}
			if container != "" {
				b.global.bind(container+e.Name+"."+rf.Name, bd)
			}
			if b.mod.Namespace != "" {
				b.global.bind(b.qualify(container+e.Name+"."+rf.Name), bd)
			}

			b.pending = append(b.pending, func() {
				v, err := bd.resolve()
				if err != nil {
					b.fail(err)
					return
				}
				f.Value = v.Int.Int64()
			})
		}
	}
	return out
}

func (b *builder) defineConsts(sc *scope, container string, recs []ir.Const, dst *[]*Const) {
	for _, rc := range recs {
		path := container + rc.Name
		kind, err := b.kind(rc.Kind, b.lookupPrefixes(container))
		if err != nil {
			b.fail(withPath(err, path))
			continue
		}
		expr, err := idl.ParseExpr(rc.Value)
		if err != nil {
			b.fail(errors.Wrap(errors.PhaseBuild, errors.KindInvalidInput, err, "constant "+path))
			continue
		}
		c := &Const{Name: rc.Name, Kind: kind, Expr: expr}
		*dst = append(*dst, c)

		bd := &binding{name: path, expr: expr, kind: kind, scope: sc}
		sc.bind(rc.Name, bd)
		if container != "" {
			b.global.bind(path, bd)
		}
		if b.mod.Namespace != "" {
			b.global.bind(b.qualify(path), bd)
		}
		b.pending = append(b.pending, func() {
			v, err := bd.resolve()
			if err != nil {
				b.fail(err)
				return
			}
			c.Value = v
		})
	}
}

func (b *builder) defineStructs() {
	for i, rs := range b.rec.Structs {
		s := b.mod.Structs[i]
		sc := b.structScopes[s]
		prefixes := b.lookupPrefixes(rs.Name + ".")
		b.defineConsts(sc, rs.Name+".", rs.Consts, &s.Consts)

		seen := make(map[string]bool, len(rs.Fields))
		ordinals := make(map[uint32]string, len(rs.Fields))
		for _, rf := range rs.Fields {
			path := rs.Name + "." + rf.Name
			if seen[rf.Name] {
				b.fail(errors.Duplicate(errors.PhaseBuild, "field", path))
				continue
			}
			seen[rf.Name] = true

			kind, err := b.kind(rf.Kind, prefixes)
			if err != nil {
				b.fail(withPath(err, path))
				continue
			}
			f, err := b.addField(s, rf.Name, kind, rf.Ordinal)
			if err != nil {
				b.fail(withPath(err, path))
				continue
			}
			if other, dup := ordinals[f.Ordinal]; dup {
				b.fail(errors.New(errors.PhaseBuild, errors.KindDuplicate).
					Path(path).
					Detail("ordinal %d already used by %s", f.Ordinal, other).
					Build())
			}
			ordinals[f.Ordinal] = rf.Name

			if rf.Default == "" {
				continue
			}
			expr, err := idl.ParseExpr(rf.Default)
			if err != nil {
				b.fail(errors.Wrap(errors.PhaseBuild, errors.KindInvalidInput, err, "default of "+path))
				continue
			}
			f.Default = expr
			b.pending = append(b.pending, func() {
				v, err := sc.eval(expr)
				if err == nil {
					v, err = coerceValue(v, f.Kind, path)
				}
				if err != nil {
					b.fail(withPath(err, path))
					return
				}
				f.DefaultValue = &v
			})
		}
	}
}

func (b *builder) addField(s *Struct, name string, kind Kind, ordinal *uint32) (*Field, error) {
	if ordinal != nil {
		return s.AddFieldAt(name, kind, *ordinal), nil
	}
	if _, ok := s.NextOrdinal(); !ok {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidOrdinal).
			Detail("no ordinal left after %d", uint32(math.MaxUint32)).
			Build()
	}
	return s.AddField(name, kind), nil
}

func (b *builder) defineInterfaces() {
	for i, ri := range b.rec.Interfaces {
		iface := b.mod.Interfaces[i]
		sc := b.ifaceScopes[iface]
		prefixes := b.lookupPrefixes(ri.Name + ".")
		b.defineConsts(sc, ri.Name+".", ri.Consts, &iface.Consts)

		var next uint64
		seen := make(map[string]bool, len(ri.Methods))
		ordinals := make(map[uint32]string, len(ri.Methods))
		for _, rm := range ri.Methods {
			path := ri.Name + "." + rm.Name
			if seen[rm.Name] {
				b.fail(errors.Duplicate(errors.PhaseBuild, "method", path))
				continue
			}
			seen[rm.Name] = true
			m := &Method{Name: rm.Name, Interface: iface, HasResponse: rm.HasResponse}
			if rm.Ordinal != nil {
				m.Ordinal = *rm.Ordinal
			} else if next > math.MaxUint32 {
				b.fail(errors.New(errors.PhaseBuild, errors.KindInvalidOrdinal).
					Path(path).
					Detail("no ordinal left after %d", uint32(math.MaxUint32)).
					Build())
				continue
			} else {
				m.Ordinal = uint32(next)
			}
			next = uint64(m.Ordinal) + 1
			if other, dup := ordinals[m.Ordinal]; dup {
				b.fail(errors.New(errors.PhaseBuild, errors.KindDuplicate).
					Path(path).
					Detail("ordinal %d already used by %s", m.Ordinal, other).
					Build())
				continue
			}
			ordinals[m.Ordinal] = rm.Name

			var err error
			if m.Parameters, err = b.parameters(rm.Parameters, prefixes, path); err != nil {
				b.fail(err)
				continue
			}
			m.Params = b.methodStruct(iface, iface.Name+"_"+m.Name+"_Params", m.Parameters)
			if rm.HasResponse {
				if m.Response, err = b.parameters(rm.ResponseParameters, prefixes, path); err != nil {
					b.fail(err)
					continue
				}
				m.ResponseParams = b.methodStruct(iface, iface.Name+"_"+m.Name+"_ResponseParams", m.Response)
			}
			iface.Methods = append(iface.Methods, m)
		}
	}
}

func (b *builder) parameters(recs []ir.Parameter, prefixes []string, path string) ([]*Parameter, error) {
	out := make([]*Parameter, 0, len(recs))
	var next uint64
	seen := make(map[string]bool, len(recs))
	ordinals := make(map[uint32]string, len(recs))
	for _, rp := range recs {
		if seen[rp.Name] {
			return nil, errors.Duplicate(errors.PhaseBuild, "parameter", path+"."+rp.Name)
		}
		seen[rp.Name] = true
		kind, err := b.kind(rp.Kind, prefixes)
		if err != nil {
			return nil, withPath(err, path+"."+rp.Name)
		}
		p := &Parameter{Name: rp.Name, Kind: kind}
		if rp.Ordinal != nil {
			p.Ordinal = *rp.Ordinal
		} else {
			if next > math.MaxUint32 {
				return nil, errors.New(errors.PhaseBuild, errors.KindInvalidOrdinal).
					Path(path, rp.Name).
					Detail("no ordinal left after %d", uint32(math.MaxUint32)).
					Build()
			}
			p.Ordinal = uint32(next)
		}
		next = uint64(p.Ordinal) + 1
		if other, dup := ordinals[p.Ordinal]; dup {
			return nil, errors.New(errors.PhaseBuild, errors.KindDuplicate).
				Path(path, rp.Name).
				Detail("ordinal %d already used by %s", p.Ordinal, other).
				Build()
		}
		ordinals[p.Ordinal] = rp.Name
		out = append(out, p)
	}
	return out, nil
}

func (b *builder) methodStruct(iface *Interface, name string, params []*Parameter) *Struct {
	s := &Struct{
		Name:      name,
		Module:    b.mod,
		Interface: iface,
		spec:      "x:" + b.qualify(name),
	}
	for _, p := range params {
		s.AddFieldAt(p.Name, p.Kind, p.Ordinal)
	}
	return s
}

func (b *builder) evaluate() {
	for _, fn := range b.pending {
		fn()
	}
	b.pending = nil
}

// lookupPrefixes lists the namespaces searched for a bare reference made
// inside container: nested, then local, then fully qualified, then imports.
func (b *builder) lookupPrefixes(container string) []string {
	var out []string
	if container != "" {
		out = append(out, b.qualify(strings.TrimSuffix(container, ".")))
	}
	if b.mod.Namespace != "" {
		out = append(out, b.mod.Namespace)
	}
	out = append(out, "")
	return append(out, b.importNamespaces...)
}

// kind resolves a spec string from the IR into an interned kind.
func (b *builder) kind(spec string, prefixes []string) (Kind, error) {
	switch {
	case strings.HasPrefix(spec, "?"):
		inner, err := b.kind(spec[1:], prefixes)
		if err != nil {
			return nil, err
		}
		if !CanBeNullable(inner) {
			return nil, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Spec(spec).
				Detail("%s cannot be nullable", inner.Spec()).
				Build()
		}
		return b.mod.intern(&Nullable{Kind: inner}), nil

	case strings.HasPrefix(spec, "a"):
		colon := strings.IndexByte(spec, ':')
		if colon < 0 {
			break
		}
		var length uint32
		if n := spec[1:colon]; n != "" {
			v, err := strconv.ParseUint(n, 10, 32)
			if err != nil || v == 0 {
				return nil, errors.New(errors.PhaseBuild, errors.KindInvalidArraySize).
					Spec(spec).
					Detail("invalid fixed array size %s", n).
					Build()
			}
			length = uint32(v)
		}
		elem, err := b.kind(spec[colon+1:], prefixes)
		if err != nil {
			return nil, err
		}
		return b.mod.intern(NewArray(elem, length)), nil

	case strings.HasPrefix(spec, "r:"):
		inner, err := b.kind(spec[2:], prefixes)
		if err != nil {
			return nil, err
		}
		iface, ok := inner.(*Interface)
		if !ok {
			return nil, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
				Spec(spec).
				Detail("%s is not an interface", inner.Spec()).
				Build()
		}
		return b.mod.intern(&InterfaceRequest{Interface: iface}), nil

	case strings.HasPrefix(spec, "x:"):
		name := spec[2:]
		for _, p := range prefixes {
			key := "x:" + name
			if p != "" {
				key = "x:" + p + "." + name
			}
			if k, ok := b.mod.kinds[key]; ok {
				return k, nil
			}
		}
		return nil, errors.NotFound(errors.PhaseBuild, "kind", name)
	}

	if k, ok := b.mod.kinds[spec]; ok {
		if _, prim := k.(*Primitive); prim {
			return k, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseBuild, "kind", spec)
}

func withPath(err error, path string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = strings.Split(path, ".")
		return e
	}
	return err
}

func mapAttributes(attrs []ir.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = Attribute{Name: a.Name, Value: a.Value}
	}
	return out
}
