package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/mojom/config"
	"github.com/wippyai/mojom/module"
)

// palette holds the styles used by the text renderer. A zero palette
// renders plain text.
type palette struct {
	title   lipgloss.Style
	name    lipgloss.Style
	kind    lipgloss.Style
	padding lipgloss.Style
	dim     lipgloss.Style
	color   bool
}

func newPalette(w io.Writer, color bool, force bool) palette {
	if !color {
		return palette{}
	}
	r := lipgloss.DefaultRenderer()
	if w != nil {
		r = lipgloss.NewRenderer(w)
	}
	if force {
		r.SetColorProfile(termenv.ANSI256)
	}
	return palette{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1),
		name:    r.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		kind:    r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		padding: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#666666")),
		color:   true,
	}
}

func (p palette) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

type layoutReport struct {
	Module  string         `yaml:"module"`
	Structs []structReport `yaml:"structs"`
}

type structReport struct {
	Name    string        `yaml:"name"`
	Size    uint32        `yaml:"size"`
	Padding int           `yaml:"padding"`
	Fields  []fieldReport `yaml:"fields"`
}

type fieldReport struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Ordinal uint32 `yaml:"ordinal"`
	Offset  uint32 `yaml:"offset"`
	Size    uint32 `yaml:"size"`
	Bit     *uint8 `yaml:"bit,omitempty"`
}

func newReport(m *module.Module) layoutReport {
	r := layoutReport{Module: m.Namespace}
	for _, s := range m.AllStructs() {
		r.Structs = append(r.Structs, structSummary(s))
	}
	return r
}

func structSummary(s *module.Struct) structReport {
	sr := structReport{Name: s.Name, Size: s.Size}
	for _, b := range s.Bytes {
		if b.IsPadding {
			sr.Padding++
		}
	}
	if s.Packed == nil {
		return sr
	}
	for _, pf := range s.Packed.Fields {
		fr := fieldReport{
			Name:    pf.Field.Name,
			Kind:    pf.Field.Kind.Spec(),
			Ordinal: pf.Ordinal,
			Offset:  pf.Offset,
			Size:    pf.Size,
		}
		if pf.Field.Kind == module.Bool {
			bit := pf.Bit
			fr.Bit = &bit
		}
		sr.Fields = append(sr.Fields, fr)
	}
	return sr
}

// renderLayout writes the packed layout of every struct in m.
func renderLayout(w io.Writer, m *module.Module, format string, p palette) error {
	report := newReport(m)
	if format == config.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	var total uint64
	padding := 0
	for i, s := range m.AllStructs() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, renderStruct(s, p))
		total += uint64(s.Size)
		padding += report.Structs[i].Padding
	}
	fmt.Fprintf(w, "\n%s structs, %s encoded, %s padding\n",
		humanize.Comma(int64(len(report.Structs))),
		humanize.Bytes(total),
		humanize.Bytes(uint64(padding)))
	return nil
}

// renderStruct formats one struct as a field table followed by a byte map
// with one row per 8-byte word.
func renderStruct(s *module.Struct, p palette) string {
	var b strings.Builder
	b.WriteString(p.paint(p.title, "struct "+s.Name))
	fmt.Fprintf(&b, " %s\n", p.paint(p.dim, humanize.Bytes(uint64(s.Size))))
	if s.Packed == nil {
		b.WriteString("  (not packed)\n")
		return b.String()
	}

	for _, pf := range s.Packed.Fields {
		at := fmt.Sprintf("%4d", pf.Offset)
		if pf.Field.Kind == module.Bool {
			at = fmt.Sprintf("%4d.%d", pf.Offset, pf.Bit)
		} else {
			at += "  "
		}
		fmt.Fprintf(&b, "  @%-3d %s  %-2d %s %s\n",
			pf.Ordinal,
			at,
			pf.Size,
			p.paint(p.name, pf.Field.Name),
			p.paint(p.kind, pf.Field.Kind.Spec()))
	}

	cells := byteCells(s)
	for word := 0; word < len(cells); word += 8 {
		fmt.Fprintf(&b, "  %s", p.paint(p.dim, fmt.Sprintf("%04x", word)))
		for _, c := range cells[word:min(word+8, len(cells))] {
			if c == "-" {
				c = p.paint(p.padding, c)
			}
			b.WriteString(" ")
			b.WriteString(c)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// byteCells labels each payload byte: the names of the fields starting
// there, "=" inside a field, "-" for padding.
func byteCells(s *module.Struct) []string {
	cells := make([]string, len(s.Bytes))
	for i, info := range s.Bytes {
		switch {
		case info.IsPadding:
			cells[i] = "-"
		case len(info.Fields) > 0:
			names := make([]string, len(info.Fields))
			for j, pf := range info.Fields {
				names[j] = pf.Field.Name
			}
			cells[i] = strings.Join(names, "/")
		default:
			cells[i] = "="
		}
	}
	return cells
}

// colorEnabled resolves the configured color mode for out.
func colorEnabled(mode string, isTerminal bool) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return isTerminal
}
