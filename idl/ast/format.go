package ast

import (
	"strconv"
	"strings"
)

// Format renders the tree as nested tagged tuples, for example
//
//	[('MODULE', 'my_module', None, [('STRUCT', 'MyStruct', None, [...])])]
//
// The rendering is stable and is used by tests and the CLI tree dump.
func Format(f *File) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	sep := func() {
		if !first {
			b.WriteString(", ")
		}
		first = false
	}
	for _, imp := range f.Imports {
		sep()
		b.WriteString("('IMPORT', ")
		b.WriteString(quote(imp.Path))
		b.WriteByte(')')
	}
	for _, m := range f.Modules {
		sep()
		b.WriteString("('MODULE', ")
		b.WriteString(quote(m.Name))
		b.WriteString(", ")
		writeAttributes(&b, m.Attributes)
		b.WriteString(", ")
		writeList(&b, len(m.Definitions), func(i int) { writeNode(&b, m.Definitions[i]) })
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Struct:
		b.WriteString("('STRUCT', ")
		b.WriteString(quote(n.Name))
		b.WriteString(", ")
		writeAttributes(b, n.Attributes)
		b.WriteString(", ")
		writeList(b, len(n.Body), func(i int) { writeNode(b, n.Body[i]) })
		b.WriteByte(')')
	case *Interface:
		b.WriteString("('INTERFACE', ")
		b.WriteString(quote(n.Name))
		b.WriteString(", ")
		writeAttributes(b, n.Attributes)
		b.WriteString(", ")
		writeList(b, len(n.Body), func(i int) { writeNode(b, n.Body[i]) })
		b.WriteByte(')')
	case *Field:
		b.WriteString("('FIELD', ")
		b.WriteString(quote(n.Type))
		b.WriteString(", ")
		b.WriteString(quote(n.Name))
		b.WriteString(", ")
		writeOrdinal(b, n.Ordinal)
		b.WriteString(", ")
		writeExpr(b, n.Default)
		b.WriteByte(')')
	case *Method:
		b.WriteString("('METHOD', ")
		b.WriteString(quote(n.Name))
		b.WriteString(", ")
		writeOrdinal(b, n.Ordinal)
		b.WriteString(", ")
		writeParams(b, n.Params)
		b.WriteString(", ")
		if n.HasResponse {
			writeParams(b, n.Response)
		} else {
			b.WriteString("None")
		}
		b.WriteByte(')')
	case *Enum:
		b.WriteString("('ENUM', ")
		b.WriteString(quote(n.Name))
		b.WriteString(", ")
		writeList(b, len(n.Values), func(i int) {
			v := n.Values[i]
			b.WriteString("('ENUM_FIELD', ")
			b.WriteString(quote(v.Name))
			b.WriteString(", ")
			writeExpr(b, v.Value)
			b.WriteByte(')')
		})
		b.WriteByte(')')
	case *Const:
		b.WriteString("('CONST', ")
		b.WriteString(quote(n.Type))
		b.WriteString(", ")
		b.WriteString(quote(n.Name))
		b.WriteString(", ")
		writeExpr(b, n.Value)
		b.WriteByte(')')
	}
}

func writeParams(b *strings.Builder, params []*Parameter) {
	writeList(b, len(params), func(i int) {
		p := params[i]
		b.WriteString("('PARAM', ")
		b.WriteString(quote(p.Type))
		b.WriteString(", ")
		b.WriteString(quote(p.Name))
		b.WriteString(", ")
		writeOrdinal(b, p.Ordinal)
		b.WriteByte(')')
	})
}

func writeAttributes(b *strings.Builder, attrs []*Attribute) {
	if attrs == nil {
		b.WriteString("None")
		return
	}
	writeList(b, len(attrs), func(i int) {
		b.WriteString("('ATTRIBUTE', ")
		b.WriteString(quote(attrs[i].Name))
		b.WriteString(", ")
		writeExpr(b, attrs[i].Value)
		b.WriteByte(')')
	})
}

func writeOrdinal(b *strings.Builder, o *Ordinal) {
	if o == nil {
		b.WriteString("Ordinal(None)")
		return
	}
	b.WriteString("Ordinal(")
	b.WriteString(strconv.FormatUint(uint64(o.Value), 10))
	b.WriteByte(')')
}

func writeExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		b.WriteString("None")
	case *Literal:
		b.WriteString(quote(e.Text))
	case *Identifier:
		b.WriteString("('IDENTIFIER', ")
		b.WriteString(quote(e.Name))
		b.WriteByte(')')
	default:
		b.WriteString("('EXPRESSION', ")
		b.WriteString(quote(e.String()))
		b.WriteByte(')')
	}
}

func writeList(b *strings.Builder, n int, item func(i int)) {
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		item(i)
	}
	b.WriteByte(']')
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
