package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/trendtower/pkg/trending"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EntryListModel - Interactive result browsing
// =============================================================================

// EntryListModel is the bubbletea model for browsing aggregation results.
type EntryListModel struct {
	Entries []trending.Entry
	Title   string
	Cursor  int
	Height  int
	Offset  int
}

// NewEntryListModel creates a browser over one aggregation result.
func NewEntryListModel(result *trending.Result) EntryListModel {
	return EntryListModel{
		Entries: result.Entries,
		Title:   fmt.Sprintf("Trending repositories (%s)", result.Timeframe),
		Height:  15,
	}
}

func (m EntryListModel) Init() tea.Cmd {
	return nil
}

func (m EntryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m EntryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	for i := m.Offset; i < end; i++ {
		entry := m.Entries[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("%s%3d. %-40s %s",
			cursor, entry.Rank, entry.FullName, entryStats(entry))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(m.Entries) > 0 {
		selected := m.Entries[m.Cursor]
		b.WriteString("\n")
		if selected.Description != "" {
			b.WriteString(listDimStyle.Render(selected.Description))
			b.WriteString("\n")
		}
		b.WriteString(listDimStyle.Render(selected.RepoURL))
		b.WriteString("\n")
	}

	return b.String()
}

// browseResult runs the interactive browser over a result.
func browseResult(result *trending.Result) error {
	if len(result.Entries) == 0 {
		printInfo("Nothing to browse")
		return nil
	}
	_, err := tea.NewProgram(NewEntryListModel(result)).Run()
	return err
}
