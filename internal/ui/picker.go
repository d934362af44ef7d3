package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned by Pick for an empty list.
var ErrNothingToPick = errors.New("nothing to pick from")

// PickerItem is one entry of a picker.
type PickerItem struct {
	Label  string // e.g. lesson title or contract name
	Detail string // shown dimmed next to the label
	Value  string // returned on selection
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		item := m.items[m.cursor]
		m.selected = &item
		return m, tea.Quit
	default:
		// 1-9 jump straight to an item.
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '1'); n < len(m.items) {
				m.cursor = n
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n\n")
	for i, item := range m.items {
		line := fmt.Sprintf("  %d. %s", i+1, item.Label)
		if i == m.cursor {
			sb.WriteString(StyleSelected.Render("▸"+line[1:]))
		} else {
			sb.WriteString(StyleValue.Render(line))
		}
		if item.Detail != "" {
			sb.WriteString("  " + StyleMeta.Render(item.Detail))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n" + StyleMeta.Render("  [ ↑↓ / 1-9 ] choose   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// Pick runs a list picker and returns the chosen item's Value, or "" when
// the user cancels.
func Pick(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}
	final, err := tea.NewProgram(pickerModel{title: title, items: items}).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
