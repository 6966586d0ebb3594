package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/records"
	"github.com/julianstephens/soulsync/internal/tui/components/chat"
	"github.com/julianstephens/soulsync/internal/tui/components/goallist"
)

const tabCount = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case replyMsg:
		if msg.err != nil {
			m.fail(msg.err)
			m.chat.Finish(m.session.ChatBuffer, m.status)
			return m, nil
		}
		notice := ""
		if msg.exchange.Failed {
			notice = msg.exchange.Notice
		}
		m.chat.Finish(m.session.ChatBuffer, notice)
		return m, nil

	case reflectionMsg:
		m.reflecting = false
		if msg.err != nil {
			m.journal.SetHeader(dangerStyle.Render(cli.AssistantNotice(msg.err)))
		} else {
			m.journal.SetHeader(reflectionStyle.Render("💭 AI Reflection\n" + msg.text))
		}
		return m, nil
	}

	switch m.state {
	case StateEditing, StateLogMood, StateWriteJournal:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case chat.SendMsg:
		return m, m.ask(msg.Text)

	case goallist.AddGoalMsg:
		cmd := m.openGoalForm(nil)
		return m, cmd

	case goallist.EditGoalMsg:
		goal := msg.Goal
		cmd := m.openGoalForm(&goal)
		return m, cmd

	case goallist.DeleteGoalMsg:
		goal := msg.Goal
		m.goalToDelete = &goal
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case goallist.AdvanceGoalMsg:
		in := records.InputFrom(msg.Goal)
		in.Status = goallist.NextStatus(msg.Goal.Status)
		m.report(m.records.UpdateGoal(m.username(), msg.Goal.ID, in))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (m.state != StateChat && key.Matches(msg, m.keys.Quit)) {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		}
		if m.state != StateChat {
			switch {
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case m.state == StateMoods && key.Matches(msg, m.keys.LogMood):
				cmd := m.openMoodForm()
				return m, cmd
			case m.state == StateJournal && key.Matches(msg, m.keys.Write):
				if m.reflecting {
					return m, nil
				}
				cmd := m.openJournalForm()
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateChat:
		m.chat, cmd = m.chat.Update(msg)
	case StateGoals:
		m.goals, cmd = m.goals.Update(msg)
	case StateMoods:
		m.moods, cmd = m.moods.Update(msg)
	case StateJournal:
		m.journal, cmd = m.journal.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		submit := m.submitForm()
		return m, tea.Batch(cmd, submit)
	case huh.StateAborted:
		m.closeForm()
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		if m.goalToDelete != nil {
			m.report(m.records.DeleteGoal(m.username(), m.goalToDelete.ID))
		}
	case key.Matches(k, m.keys.Cancel):
	default:
		return m, nil
	}
	m.goalToDelete = nil
	m.state = m.previousState
	return m, nil
}

func (m *Model) resize() {
	w := max(m.width-4, 10)
	// tabs, status line, help and padding
	h := max(m.height-6, 3)
	m.chat.SetSize(w, h)
	m.goals.SetSize(w, h)
	m.moods.SetSize(w, h)
	m.journal.SetSize(w, h)
}
