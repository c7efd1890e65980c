package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/wippyai/mojom/handle"
	"github.com/wippyai/mojom/module"
	"github.com/wippyai/mojom/serialization"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const listWidth = 32

type structItem struct {
	s *module.Struct
}

func (i structItem) Title() string { return i.s.Name }

func (i structItem) Description() string {
	if i.s.Interface != nil {
		return fmt.Sprintf("%s, %d fields (%s)", humanize.Bytes(uint64(i.s.Size)), len(i.s.Fields), i.s.Interface.Name)
	}
	return fmt.Sprintf("%s, %d fields", humanize.Bytes(uint64(i.s.Size)), len(i.s.Fields))
}

func (i structItem) FilterValue() string { return i.s.Name }

type interactiveModel struct {
	err      error
	opts     options
	mod      *module.Module
	list     list.Model
	detail   viewport.Model
	selected *module.Struct
	width    int
	height   int
	ready    bool
}

type loadedMsg struct {
	err error
	mod *module.Module
}

func newInteractiveModel(o options) *interactiveModel {
	return &interactiveModel{opts: o}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	mod, _, err := compile(m.opts)
	return loadedMsg{err: err, mod: mod}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.ready || m.list.FilterState() != list.Filtering {
				return m, tea.Quit
			}
		case "r":
			if !m.ready || m.list.FilterState() != list.Filtering {
				return m, m.load
			}
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case loadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.mod = msg.mod
		m.populate()
		return m, nil
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncDetail()
	return m, cmd
}

func (m *interactiveModel) populate() {
	structs := m.mod.AllStructs()
	items := make([]list.Item, len(structs))
	for i, s := range structs {
		items[i] = structItem{s: s}
	}

	if m.ready {
		m.list.SetItems(items)
	} else {
		l := list.New(items, list.NewDefaultDelegate(), listWidth, 10)
		l.Title = m.mod.Namespace
		if l.Title == "" {
			l.Title = m.opts.file
		}
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(true)
		l.Styles.Title = titleStyle
		m.list = l
		m.detail = viewport.New(40, 10)
		m.ready = true
	}
	m.selected = nil
	m.resize()
	m.syncDetail()
}

func (m *interactiveModel) resize() {
	if !m.ready || m.width == 0 {
		return
	}
	h := m.height - 4
	m.list.SetSize(listWidth, h)
	m.detail.Width = max(m.width-listWidth-4, 20)
	m.detail.Height = h
}

// syncDetail rerenders the detail pane when the selection changed.
func (m *interactiveModel) syncDetail() {
	item, ok := m.list.SelectedItem().(structItem)
	if !ok || item.s == m.selected {
		return
	}
	m.selected = item.s
	m.detail.SetContent(describeStruct(item.s, newPalette(nil, true, false)))
	m.detail.GotoTop()
}

// describeStruct renders the layout of s and, when its defaults can be
// encoded, the resulting message bytes. Unset handle fields are given
// placeholder handles so that the handle table of the message can be shown.
func describeStruct(s *module.Struct, p palette) string {
	var b strings.Builder
	b.WriteString(renderStruct(s, p))
	b.WriteString("\n")

	table := handle.NewTable()
	defer table.Close()
	inst := serialization.NewInstance(s)
	if err := fillHandles(table, inst); err != nil {
		return b.String() + p.paint(p.dim, "placeholder handles failed: ") + err.Error() + "\n"
	}

	data, handles, err := serialization.Encode(inst, 0)
	if err != nil {
		b.WriteString(p.paint(p.dim, "defaults do not encode: "))
		b.WriteString(err.Error())
		b.WriteString("\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n", p.paint(p.dim, fmt.Sprintf("default message, %s, %d handle(s)",
		humanize.Bytes(uint64(len(data))), len(handles))))
	b.WriteString(hex.Dump(data))

	values, err := table.Resolve(handles)
	if err != nil {
		fmt.Fprintf(&b, "handles do not resolve: %v\n", err)
		return b.String()
	}
	for i, h := range handles {
		k, _ := table.KindOf(h)
		fmt.Fprintf(&b, "  [%d] %s %s %v\n", i, h, p.paint(p.kind, k.Spec()), values[i])
	}
	return b.String()
}

// fillHandles issues a placeholder handle for every unset non-nullable
// handle field of inst and of the struct instances it holds.
func fillHandles(table *handle.Table, inst *serialization.Instance) error {
	st := inst.Struct()
	for _, f := range st.Fields {
		v := inst.Get(f.Name)
		if nested, ok := v.(*serialization.Instance); ok && nested != nil {
			if err := fillHandles(table, nested); err != nil {
				return err
			}
			continue
		}
		if !module.IsHandle(f.Kind) || module.IsNullable(f.Kind) {
			continue
		}
		if h, ok := v.(serialization.Handle); ok && h.IsValid() {
			continue
		}
		h, err := table.Insert(f.Kind, st.Name+"."+f.Name)
		if err != nil {
			return err
		}
		if err := inst.Set(f.Name, h); err != nil {
			return err
		}
	}
	return nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			helpStyle.Render("r reload • q quit")
	}
	if !m.ready {
		return "Loading " + m.opts.file + "..."
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.list.View(),
		paneStyle.Render(m.detail.View()))
	return panes + "\n" + helpStyle.Render("↑/↓ select • / filter • pgup/pgdown scroll • r reload • q quit")
}

func runInteractive(o options) error {
	p := tea.NewProgram(newInteractiveModel(o), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
