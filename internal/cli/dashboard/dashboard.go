package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/insights"
	"github.com/julianstephens/soulsync/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

const barWidth = 20

type DashboardCmd struct {
	Days int `help:"Days of mood history to chart." default:"14"`
}

func (c *DashboardCmd) Validate() error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	return nil
}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	rec, _, err := ctx.Records.Record(username)
	if err != nil {
		return err
	}

	ctx.Println(titleStyle.Render("📊 " + username + "'s Wellness Dashboard"))
	ctx.Println(sectionStyle.Render(renderGoals(insights.SummarizeGoals(rec.Goals))))

	trend := insights.MoodTrend(rec.Moods)
	ctx.Println(sectionStyle.Render(renderMoods(trend, c.Days)))

	journals := len(rec.Journals)
	ctx.Println(sectionStyle.Render(fmt.Sprintf("Journal\n  %d entries written", journals)))
	return nil
}

func renderGoals(s insights.GoalSummary) string {
	if s.Total == 0 {
		return "Goals\n  " + dimStyle.Render("No goals yet.")
	}
	rows := []struct {
		label string
		n     int
	}{
		{string(models.GoalToDo), s.ToDo},
		{string(models.GoalInProgress), s.InProgress},
		{string(models.GoalCompleted), s.Completed},
		{string(models.GoalCancelled), s.Cancelled},
	}
	if s.Unknown > 0 {
		rows = append(rows, struct {
			label string
			n     int
		}{string(models.GoalStatusUnknown), s.Unknown})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Goals (%d total)", s.Total)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n  %-12s %s %d", r.label, bar(float64(r.n), float64(s.Total)), r.n)
	}
	return b.String()
}

func renderMoods(t insights.Trend, days int) string {
	var b strings.Builder
	b.WriteString("Mood trend")
	if len(t.Points) == 0 {
		b.WriteString("\n  " + dimStyle.Render("No moods logged yet."))
		return b.String()
	}

	fmt.Fprintf(&b, " (average %.1f / 5)", t.Average())
	dist := t.DailyDistribution()
	if len(dist) > days {
		dist = dist[len(dist)-days:]
	}
	for _, day := range dist {
		var sum float64
		var n int
		var labels []string
		for _, label := range models.MoodLabels {
			if count := day.Counts[label]; count > 0 {
				sum += insights.MoodValue(label) * float64(count)
				n += count
				labels = append(labels, label.Emoji())
			}
		}
		for label, count := range day.Counts {
			if !label.Valid() {
				n += count
				labels = append(labels, models.UnknownMoodEmoji)
			}
		}
		avg := 0.0
		if n > 0 {
			avg = sum / float64(n)
		}
		fmt.Fprintf(&b, "\n  %s %s %.1f %s", day.Date, bar(avg, 5), avg, strings.Join(labels, ""))
	}
	if len(t.Skipped) > 0 {
		fmt.Fprintf(&b, "\n  %s", dimStyle.Render(fmt.Sprintf("%d entries could not be charted", len(t.Skipped))))
	}
	return b.String()
}

func bar(value, max float64) string {
	if max <= 0 {
		return strings.Repeat(" ", barWidth)
	}
	filled := int(value / max * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

// WeekCmd prints a summary of the past seven days.
type WeekCmd struct{}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	rec, _, err := ctx.Records.Record(username)
	if err != nil {
		return err
	}
	w := insights.WeeklyReflection(rec, ctx.Today())

	ctx.Println(titleStyle.Render(fmt.Sprintf("🌱 Your week: %s to %s",
		w.From.Format(constants.DateFormat), w.To.Format(constants.DateFormat))))

	if len(w.Moods.Points) == 0 {
		ctx.Println("  No moods logged this week.")
	} else {
		ctx.Printf("  Moods logged: %d (average %.1f / 5)\n", len(w.Moods.Points), w.Moods.Average())
		ctx.Printf("  Most frequent: %s %s\n", w.TopMood.Emoji(), w.TopMood)
	}
	ctx.Printf("  Journal entries: %d\n", w.JournalCount)
	ctx.Printf("  Goals: %d completed, %d in progress, %d to do\n", w.Goals.Completed, w.Goals.InProgress, w.Goals.ToDo)

	if len(w.GoalsDueSoon) > 0 {
		ctx.Println("  Due in the next week:")
		for _, g := range w.GoalsDueSoon {
			ctx.Printf("    • %s (%s)\n", g.Title, *g.DueDate)
		}
	}
	if skipped := w.SkippedMoods + w.SkippedJournal; skipped > 0 {
		ctx.Printf("  %d entries could not be dated and were left out.\n", skipped)
	}
	return nil
}
