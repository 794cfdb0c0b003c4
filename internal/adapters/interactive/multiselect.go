package interactive

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/samber/lo"
)

// multiSelectModel is the bubbletea model for multi-select
type multiSelectModel struct {
	options  []Option
	cursor   int
	selected map[int]bool
	title    string
	done     bool
}

func initialMultiSelectModel(options []Option, title string) multiSelectModel {
	return multiSelectModel{
		options:  options,
		selected: make(map[int]bool),
		title:    title,
	}
}

// Init is the initial command for bubbletea
func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.selected = map[int]bool{}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := len(m.chosen()) != len(m.options)
		for i := range m.options {
			m.selected[i] = all
		}
	case "enter":
		if len(m.chosen()) > 0 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// chosen returns the selected indices in display order
func (m multiSelectModel) chosen() []int {
	indices := lo.Filter(lo.Keys(m.selected), func(i int, _ int) bool { return m.selected[i] })
	sort.Ints(indices)
	return indices
}

// View renders the UI
func (m multiSelectModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for i, option := range m.options {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}

		checkbox := color.New(color.FgWhite).Sprint("○")
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		}

		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox, option))
	}

	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))

	return b.String()
}

// SelectMany shows a multi-select interface and returns the chosen options
func (s *SelectorAdapter) SelectMany(title string, options []Option) ([]Option, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("nothing to select")
	}
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	p := tea.NewProgram(initialMultiSelectModel(options, title))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}

	m := finalModel.(multiSelectModel)
	if !m.done {
		return nil, fmt.Errorf("selection cancelled")
	}
	return lo.Map(m.chosen(), func(i int, _ int) Option { return options[i] }), nil
}
