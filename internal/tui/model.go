package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
	"github.com/julianstephens/soulsync/internal/session"
	"github.com/julianstephens/soulsync/internal/tui/components/chat"
	"github.com/julianstephens/soulsync/internal/tui/components/goallist"
	"github.com/julianstephens/soulsync/internal/tui/components/history"
)

type SessionState int

const (
	StateChat SessionState = iota
	StateGoals
	StateMoods
	StateJournal
	StateEditing
	StateLogMood
	StateWriteJournal
	StateConfirmDelete
)

var tabTitles = []string{"Chat", "Goals", "Moods", "Journal"}

// Reflector writes a short reflection on a journal entry.
type Reflector interface {
	Reflect(ctx context.Context, entry string) (string, error)
}

type Config struct {
	Records *records.Service
	Session *session.Session
	// Reflector may be nil, in which case entries are saved without a reflection.
	Reflector Reflector
	Timeout   time.Duration
}

type replyMsg struct {
	exchange session.Exchange
	err      error
}

type reflectionMsg struct {
	text string
	err  error
}

type Model struct {
	records   *records.Service
	session   *session.Session
	reflector Reflector
	timeout   time.Duration

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	chat    chat.Model
	goals   goallist.Model
	moods   history.Model
	journal history.Model

	form         *huh.Form
	goalForm     *cli.GoalFormModel
	moodForm     *cli.MoodFormModel
	journalText  *string
	goalToDelete *models.Goal

	status     string
	statusErr  bool
	reflecting bool
	quitting   bool
	width      int
	height     int
}

func New(cfg Config) Model {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAITimeout
	}

	var suggestions []string
	if rec, _, err := cfg.Records.Record(cfg.Session.Username); err == nil {
		suggestions = assistant.SuggestedPrompts(rec)
	}

	m := Model{
		records:   cfg.Records,
		session:   cfg.Session,
		reflector: cfg.Reflector,
		timeout:   timeout,
		state:     StateChat,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		chat:      chat.New(cfg.Session.ChatBuffer, suggestions),
		goals:     goallist.New(nil, 0, 0),
		moods:     history.New("No moods logged yet. Press 'l' to log one."),
		journal:   history.New("No journal entries yet. Press 'w' to write one."),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.chat.Init()
}

func (m Model) username() string {
	return m.session.Username
}

// refresh reloads every tab from the store.
func (m *Model) refresh() {
	user := m.username()

	goals, err := m.records.Goals(user)
	if err != nil {
		m.fail(err)
		return
	}
	m.goals.SetGoals(goals)

	moods, err := m.records.MoodHistory(user)
	if err != nil {
		m.fail(err)
		return
	}
	m.moods.SetEntries(history.MoodEntries(moods), moods.Skipped)

	journals, err := m.records.JournalHistory(user)
	if err != nil {
		m.fail(err)
		return
	}
	m.journal.SetEntries(history.JournalEntries(journals), journals.Skipped)
}

func (m *Model) fail(err error) {
	logger.Error("TUI operation failed", "error", err)
	m.status = userMessage(err)
	m.statusErr = true
}

// report shows a Result and reloads the tabs after a successful change.
func (m *Model) report(res records.Result, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.status = res.Message
	m.statusErr = !res.OK
	if res.OK {
		m.refresh()
	}
}

func userMessage(err error) string {
	if um, ok := err.(interface{ UserMessage() string }); ok {
		return um.UserMessage()
	}
	return err.Error()
}

func (m Model) ask(text string) tea.Cmd {
	sess, timeout := m.session, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ex, err := sess.Ask(ctx, text)
		return replyMsg{exchange: ex, err: err}
	}
}

func (m Model) reflect(entry string) tea.Cmd {
	r, timeout := m.reflector, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := r.Reflect(ctx, entry)
		return reflectionMsg{text: text, err: err}
	}
}

func (m *Model) openGoalForm(goal *models.Goal) tea.Cmd {
	in := records.GoalInput{}
	if goal != nil {
		in = records.InputFrom(*goal)
		m.session.StartEditing(goal.ID)
	} else {
		m.session.StopEditing()
	}
	fm := cli.GoalFormFrom(in)
	m.goalForm = &fm
	m.form = cli.NewGoalForm(m.goalForm)
	return m.openForm(StateEditing)
}

func (m *Model) openMoodForm() tea.Cmd {
	m.moodForm = cli.NewMoodFormModel()
	m.form = cli.NewMoodForm(m.moodForm)
	return m.openForm(StateLogMood)
}

func (m *Model) openJournalForm() tea.Cmd {
	text := ""
	m.journalText = &text
	m.form = cli.NewJournalForm(m.journalText, assistant.ReflectionPrompt())
	return m.openForm(StateWriteJournal)
}

func (m *Model) openForm(state SessionState) tea.Cmd {
	m.previousState = m.state
	m.state = state
	m.status = ""
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.state = m.previousState
	m.form = nil
	m.session.StopEditing()
}

// submitForm applies the completed form for the current state.
func (m *Model) submitForm() tea.Cmd {
	user := m.username()
	var cmd tea.Cmd

	switch m.state {
	case StateEditing:
		in := m.goalForm.Input()
		if id := m.session.EditingGoalID; id != nil {
			m.report(m.records.UpdateGoal(user, *id, in))
		} else {
			m.report(m.records.AddGoal(user, in))
		}
	case StateLogMood:
		label := m.moodForm.Label
		m.report(m.records.AddMood(user, label, label.Emoji(), m.moodForm.Description))
	case StateWriteJournal:
		entry := *m.journalText
		res, err := m.records.AddJournalEntry(user, entry)
		m.report(res, err)
		if err == nil && res.OK && m.reflector != nil {
			m.reflecting = true
			m.journal.SetHeader(reflectionStyle.Render("💭 Reflecting on your entry..."))
			cmd = m.reflect(entry)
		}
	}

	m.closeForm()
	return cmd
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit}
	switch m.state {
	case StateChat:
		keys = append(keys, m.chat.ShortHelp()...)
	case StateGoals:
		gk := goallist.DefaultKeyMap()
		keys = append(keys, m.keys.Help, gk.Add, gk.Edit, gk.Delete, gk.Advance)
	case StateMoods:
		keys = append(keys, m.keys.Help, m.keys.LogMood)
	case StateJournal:
		keys = append(keys, m.keys.Help, m.keys.Write)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp(), m.keys.FullHelp()[1]}
}
