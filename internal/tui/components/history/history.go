package history

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

// Entry is one row of a history view.
type Entry struct {
	When   string
	Label  string
	Detail string
}

// Model is a scrollable, newest-first list of entries plus the entries that
// could not be shown.
type Model struct {
	viewport viewport.Model
	entries  []Entry
	skipped  []string
	header   string
	empty    string
	width    int
}

func New(empty string) Model {
	return Model{
		viewport: viewport.New(0, 0),
		empty:    empty,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetHeader sets a line shown above the entries, e.g. an AI reflection.
func (m *Model) SetHeader(header string) {
	m.header = header
	m.Render()
}

func (m *Model) SetEntries(entries []Entry, skipped []*models.MalformedRecordError) {
	m.entries = entries
	m.skipped = make([]string, 0, len(skipped))
	for _, s := range skipped {
		m.skipped = append(m.skipped, s.Error())
	}
	m.Render()
}

func (m Model) Len() int {
	return len(m.entries)
}

func (m *Model) Render() {
	var b strings.Builder
	if m.header != "" {
		wrap := lipgloss.NewStyle()
		if m.width > 0 {
			wrap = wrap.Width(m.width)
		}
		b.WriteString(wrap.Render(m.header))
		b.WriteString("\n\n")
	}
	if len(m.entries) == 0 {
		b.WriteString(m.empty)
		b.WriteString("\n")
	}
	for _, e := range m.entries {
		b.WriteString(timeStyle.Render(e.When))
		b.WriteString(labelStyle.Render(e.Label))
		b.WriteString("\n")
		if e.Detail != "" {
			b.WriteString(detailStyle.Render("  " + e.Detail))
			b.WriteString("\n")
		}
	}
	for _, s := range m.skipped {
		b.WriteString(skippedStyle.Render("⚠ " + s))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func MoodEntries(h models.History[models.ResolvedMood]) []Entry {
	out := make([]Entry, 0, len(h.Entries))
	for _, r := range h.Entries {
		out = append(out, Entry{
			When:   r.At.Format(constants.DisplayFormat),
			Label:  r.Entry.Emoji() + " " + r.Entry.Label(),
			Detail: r.Entry.Description,
		})
	}
	return out
}

func JournalEntries(h models.History[models.ResolvedJournal]) []Entry {
	out := make([]Entry, 0, len(h.Entries))
	for _, r := range h.Entries {
		out = append(out, Entry{
			When:  r.At.Format(constants.DisplayFormat),
			Label: r.Entry.Content,
		})
	}
	return out
}
