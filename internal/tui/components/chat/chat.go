package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/soulsync/internal/models"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const inputHeight = 3

// SendMsg asks the parent model to deliver a message to the assistant.
type SendMsg struct {
	Text string
}

type KeyMap struct {
	Send     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "scroll down"),
		),
	}
}

type Model struct {
	viewport    viewport.Model
	input       textarea.Model
	spinner     spinner.Model
	keys        KeyMap
	messages    []models.ChatMessage
	suggestions []string
	notice      string
	waiting     bool
	width       int
}

func New(history []models.ChatMessage, suggestions []string) Model {
	ta := textarea.New()
	ta.Placeholder = "Share what's on your mind..."
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantStyle

	m := Model{
		viewport:    viewport.New(0, 0),
		input:       ta,
		spinner:     sp,
		keys:        DefaultKeyMap(),
		messages:    append([]models.ChatMessage(nil), history...),
		suggestions: suggestions,
	}
	m.render()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.render()
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Send):
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				m.notice = "Please type a message first."
				m.render()
				return m, nil
			}
			m.input.Reset()
			m.notice = ""
			m.waiting = true
			m.messages = append(m.messages, models.UserMessage(text))
			m.render()
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return SendMsg{Text: text} })
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// Finish ends the pending exchange with the conversation as stored.
func (m *Model) Finish(history []models.ChatMessage, notice string) {
	m.waiting = false
	m.messages = append([]models.ChatMessage(nil), history...)
	m.notice = notice
	m.render()
}

func (m Model) Waiting() bool {
	return m.waiting
}

func (m Model) Notice() string {
	return m.notice
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.input.SetWidth(width)
	// input, notice line and a blank separator
	m.viewport.Width = width
	m.viewport.Height = max(height-inputHeight-2, 1)
	m.render()
}

func (m *Model) render() {
	var b strings.Builder
	if len(m.messages) == 0 {
		b.WriteString(hintStyle.Render("Start a conversation. You could ask:"))
		b.WriteString("\n")
		for _, s := range m.suggestions {
			b.WriteString(hintStyle.Render("  • " + s))
			b.WriteString("\n")
		}
	}

	wrap := lipgloss.NewStyle()
	if m.width > 0 {
		wrap = wrap.Width(m.width)
	}
	for _, msg := range m.messages {
		if msg.Role == models.RoleAssistant {
			b.WriteString(assistantStyle.Render("SoulSync:"))
		} else {
			b.WriteString(userStyle.Render("You:"))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(msg.Content))
		b.WriteString("\n")
		if msg.ReplyError != "" {
			b.WriteString(failedStyle.Render("(no reply)"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if m.waiting {
		b.WriteString(m.spinner.View() + " thinking...")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	notice := ""
	if m.notice != "" {
		notice = noticeStyle.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		notice,
		m.input.View(),
	)
}

// ShortHelp lists the bindings active on the chat tab.
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Send, m.keys.PageUp, m.keys.PageDown}
}
