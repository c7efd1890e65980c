package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad_Imports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app/main.mojom": `
import "sibling.mojom"
import "shared/types.mojom"

module app {

struct Main {
  sibling.Local local;
  shared.Point where;
};

}
`,
		"app/sibling.mojom": `module sibling { struct Local { int8 v; }; }`,
		"lib/shared/types.mojom": `module shared { struct Point { int32 x; int32 y; }; }`,
	})

	l := New(WithImportPaths(filepath.Join(dir, "lib")))
	m, err := l.Load(filepath.Join(dir, "app", "main.mojom"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(m.Imports))
	}

	main := m.Structs[0]
	if main.Packed == nil || main.Size != 24 {
		t.Errorf("Main size = %d, packed = %v", main.Size, main.Packed != nil)
	}
	point := m.Imports[1].Module.Structs[0]
	if point.Size != 16 {
		t.Errorf("Point size = %d, want 16", point.Size)
	}
	if got := main.Fields[1].Kind; got != point {
		t.Errorf("Main.where kind = %v, want the imported Point", got.Spec())
	}

	if got := len(l.Files()); got != 3 {
		t.Errorf("cached files = %d, want 3", got)
	}
}

func TestLoad_SharedImportIsCached(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.mojom": `import "c.mojom" module a { struct A { c.C v; }; }`,
		"b.mojom": `import "c.mojom" module b { struct B { c.C v; }; }`,
		"c.mojom": `module c { struct C { bool f; }; }`,
	})

	l := New()
	mods, err := l.LoadAll(filepath.Join(dir, "a.mojom"), filepath.Join(dir, "b.mojom"))
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if mods[0].Imports[0].Module != mods[1].Imports[0].Module {
		t.Error("c.mojom was built twice")
	}

	l.Reset()
	again, err := l.Load(filepath.Join(dir, "a.mojom"))
	if err != nil {
		t.Fatalf("Load after Reset failed: %v", err)
	}
	if again == mods[0] {
		t.Error("Reset did not drop the cache")
	}
}

func TestLoad_Cycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.mojom": `import "b.mojom" module a {}`,
		"b.mojom": `import "a.mojom" module b {}`,
	})

	_, err := New().Load(filepath.Join(dir, "a.mojom"))
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindCycle}) {
		t.Fatalf("error = %v, want load/cycle", err)
	}
	if !strings.Contains(err.Error(), "a.mojom -> ") {
		t.Errorf("error %q does not show the cycle", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"missing.mojom": `import "nowhere.mojom" module m {}`,
		"syntax.mojom":  "module m {\nstruct {\n}",
		"ternary.mojom": "module m {\nconst int32 x = true ? 1 : 2;\n}",
	})

	tests := []struct {
		name    string
		file    string
		dialect idl.Dialect
		phase   errors.Phase
		kind    errors.Kind
	}{
		{"file not found", "absent.mojom", idl.Modern, errors.PhaseLoad, errors.KindNotFound},
		{"import not found", "missing.mojom", idl.Modern, errors.PhaseLoad, errors.KindNotFound},
		{"syntax", "syntax.mojom", idl.Modern, errors.PhaseParse, errors.KindUnexpectedToken},
		{"ternary in modern", "ternary.mojom", idl.Modern, errors.PhaseLex, errors.KindSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(WithDialect(tt.dialect))
			_, err := l.Load(filepath.Join(dir, tt.file))
			if !errors.Is(err, &errors.Error{Phase: tt.phase, Kind: tt.kind}) {
				t.Fatalf("error = %v, want %s/%s", err, tt.phase, tt.kind)
			}
		})
	}
}

func TestLoadAll_CollectsErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.mojom":  `module ok { struct S { int32 a; }; }`,
		"bad.mojom": `module bad { struct {`,
	})

	mods, err := New().LoadAll(
		filepath.Join(dir, "bad.mojom"),
		filepath.Join(dir, "ok.mojom"),
		filepath.Join(dir, "gone.mojom"),
	)
	if len(mods) != 1 {
		t.Errorf("loaded %d modules, want 1", len(mods))
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Errorf("collected %d errors, want 2: %v", got, err)
	}
}

func TestLoadSource(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"dep.mojom": `module dep { enum Color { RED, GREEN }; }`,
	})

	l := New()
	m, err := l.LoadSource(filepath.Join(dir, "inline.mojom"), `
import "dep.mojom"
module inline {
struct S { dep.Color c = dep.Color.GREEN; };
}
`)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if m.Structs[0].Size != 16 {
		t.Errorf("size = %d, want 16", m.Structs[0].Size)
	}
	if got := len(l.Files()); got != 1 {
		t.Errorf("cached files = %d, want only the import", got)
	}
}
