package goallist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/soulsync/internal/models"
)

type AddGoalMsg struct{}

type EditGoalMsg struct {
	Goal models.Goal
}

type DeleteGoalMsg struct {
	Goal models.Goal
}

// AdvanceGoalMsg moves a goal to the next status in the workflow.
type AdvanceGoalMsg struct {
	Goal models.Goal
}

type Item struct {
	Goal models.Goal
}

func (i Item) Title() string {
	return fmt.Sprintf("[%s] %s", i.Goal.Status.Display(), i.Goal.Title)
}

func (i Item) Description() string {
	due := "N/A"
	if i.Goal.HasDueDate() {
		due = *i.Goal.DueDate
	}
	desc := "due " + due
	if i.Goal.Description != "" {
		desc += " | " + i.Goal.Description
	}
	return desc
}

func (i Item) FilterValue() string { return i.Goal.Title }

type KeyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Advance key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Advance: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next status"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(goals []models.Goal, width, height int) Model {
	l := list.New(items(goals), list.NewDefaultDelegate(), width, height)
	l.Title = "Goals"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Advance}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Advance}
	}

	return Model{list: l, keys: keys}
}

func items(goals []models.Goal) []list.Item {
	out := make([]list.Item, len(goals))
	for i, g := range goals {
		out[i] = Item{Goal: g}
	}
	return out
}

func (m *Model) SetGoals(goals []models.Goal) {
	m.list.SetItems(items(goals))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddGoalMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditGoalMsg(i) }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteGoalMsg(i) }
			}
		case key.Matches(msg, m.keys.Advance):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return AdvanceGoalMsg(i) }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No goals yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// NextStatus is the status a goal advances to; cancelled and completed goals
// start over at To Do.
func NextStatus(s models.GoalStatus) models.GoalStatus {
	switch s {
	case models.GoalToDo:
		return models.GoalInProgress
	case models.GoalInProgress:
		return models.GoalCompleted
	default:
		return models.GoalToDo
	}
}
