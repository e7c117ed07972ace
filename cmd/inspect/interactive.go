package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anybox/anybox/dispatch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	capStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

type inspectModel struct {
	all      []dispatch.Info
	visible  []dispatch.Info
	filter   textinput.Model
	selected int
	state    modelState
}

func newInspectModel() *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "type name"
	ti.Prompt = "filter: "
	ti.Width = 40
	ti.Focus()

	m := &inspectModel{
		all:    dispatch.Tables(),
		filter: ti,
	}
	m.applyFilter()
	return m
}

func (m *inspectModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, info := range m.all {
		if query == "" || strings.Contains(strings.ToLower(info.Type), query) {
			m.visible = append(m.visible, info)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateList && len(m.visible) > 0 {
				m.state = stateDetail
			}
			return m, nil

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
			} else {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil
		}
	}

	if m.state == stateList {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Dispatch Tables"))
	fmt.Fprintf(&b, " %d registered\n\n", len(m.all))

	switch m.state {
	case stateList:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		if len(m.visible) == 0 {
			b.WriteString(dimStyle.Render("no tables match"))
			b.WriteString("\n")
		}
		for i, info := range m.visible {
			line := m.formatLine(info)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("↑/↓ select • enter details • esc clear • q quit"))

	case stateDetail:
		info := m.visible[m.selected]
		fmt.Fprintf(&b, "%s %s\n\n", typeStyle.Render(info.Type), modeStyle.Render("("+info.Mode+")"))
		fmt.Fprintf(&b, "package:  %s v%s\n", info.Package, info.Version)
		fmt.Fprintf(&b, "slots:    %d stored / %d declared\n", info.StoredSlots, info.DeclaredSlots)
		fmt.Fprintf(&b, "table:    0x%x\n\n", info.Addr)
		b.WriteString("capabilities:\n")
		if len(info.Capabilities) == 0 {
			b.WriteString(dimStyle.Render("  (erasure only)"))
			b.WriteString("\n")
		}
		for _, c := range info.Capabilities {
			b.WriteString("  " + capStyle.Render(c) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("esc back • q quit"))
	}

	return b.String()
}

func (m *inspectModel) formatLine(info dispatch.Info) string {
	return typeStyle.Render(info.Type) + " " +
		modeStyle.Render("("+info.Mode+")") + " " +
		dimStyle.Render(fmt.Sprintf("%d/%d slots", info.StoredSlots, info.DeclaredSlots))
}

func runInteractive() error {
	p := tea.NewProgram(newInspectModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
