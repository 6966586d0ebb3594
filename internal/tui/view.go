package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateChat:
		content = m.chat.View()
	case StateGoals:
		content = m.goals.View()
	case StateMoods:
		content = m.moods.View()
	case StateJournal:
		content = m.journal.View()
	case StateEditing, StateLogMood, StateWriteJournal:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active > StateJournal {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, userTagStyle.Render("· "+m.username()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return successStyle.Render("✓ " + m.status)
}

func (m Model) viewConfirmDelete() string {
	title := ""
	if m.goalToDelete != nil {
		title = m.goalToDelete.Title
	}
	return lipgloss.Place(max(m.width-4, 0), max(m.height-6, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete goal \""+title+"\"?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
