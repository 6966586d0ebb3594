package goals

import (
	"fmt"
	"strings"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
)

type GoalCmd struct {
	Add    GoalAddCmd    `cmd:"" help:"Add a new goal."`
	Edit   GoalEditCmd   `cmd:"" help:"Edit an existing goal."`
	Delete GoalDeleteCmd `cmd:"" help:"Delete a goal."`
	List   GoalListCmd   `cmd:"" help:"List goals." default:"1"`
	Show   GoalShowCmd   `cmd:"" help:"Show one goal."`
}

type GoalAddCmd struct {
	Title       string `arg:"" optional:"" help:"Goal title (opens a form when omitted)."`
	Description string `short:"d" help:"Goal description."`
	Due         string `help:"Due date (YYYY-MM-DD)."`
	Status      string `short:"s" help:"Status (todo|in-progress|completed|cancelled)." default:"To Do"`
}

func (c *GoalAddCmd) Validate() error {
	if err := cli.ValidateDueDate(c.Due); err != nil {
		return err
	}
	_, err := parseStatus(c.Status)
	return err
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	status, err := parseStatus(c.Status)
	if err != nil {
		return err
	}
	fm := cli.GoalFormModel{Title: c.Title, Description: c.Description, DueDate: c.Due, Status: status}
	if strings.TrimSpace(fm.Title) == "" {
		if err := cli.NewGoalForm(&fm).Run(); err != nil {
			return err
		}
	}
	return ctx.Report(ctx.Records.AddGoal(username, fm.Input()))
}

type GoalEditCmd struct {
	ID          string  `arg:"" help:"Goal ID or unique prefix."`
	Title       *string `help:"New title."`
	Description *string `short:"d" help:"New description."`
	Due         *string `help:"New due date (YYYY-MM-DD, empty to clear)."`
	Status      *string `short:"s" help:"New status."`
}

func (c *GoalEditCmd) Validate() error {
	if c.Due != nil {
		if err := cli.ValidateDueDate(*c.Due); err != nil {
			return err
		}
	}
	if c.Status != nil {
		if _, err := parseStatus(*c.Status); err != nil {
			return err
		}
	}
	return nil
}

func (c *GoalEditCmd) noFlags() bool {
	return c.Title == nil && c.Description == nil && c.Due == nil && c.Status == nil
}

func (c *GoalEditCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	goal, found, err := ctx.Records.GetGoal(username, c.ID)
	if err != nil {
		return err
	}
	if !found {
		return &cli.RejectedError{Message: "Goal not found."}
	}

	in := records.InputFrom(goal)
	if c.noFlags() {
		fm := cli.GoalFormFrom(in)
		if err := cli.NewGoalForm(&fm).Run(); err != nil {
			return err
		}
		in = fm.Input()
	} else {
		if c.Title != nil {
			in.Title = *c.Title
		}
		if c.Description != nil {
			in.Description = *c.Description
		}
		if c.Due != nil {
			due := strings.TrimSpace(*c.Due)
			in.DueDate = &due
		}
		if c.Status != nil {
			status, err := parseStatus(*c.Status)
			if err != nil {
				return err
			}
			in.Status = status
		}
	}

	return ctx.Report(ctx.Records.UpdateGoal(username, goal.ID, in))
}

type GoalDeleteCmd struct {
	ID  string `arg:"" help:"Goal ID or unique prefix."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	goal, found, err := ctx.Records.GetGoal(username, c.ID)
	if err != nil {
		return err
	}
	if !found {
		return &cli.RejectedError{Message: "Goal not found."}
	}

	if !c.Yes {
		confirmed, err := cli.Confirm(fmt.Sprintf("Delete goal %q?", goal.Title))
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	return ctx.Report(ctx.Records.DeleteGoal(username, goal.ID))
}

type GoalListCmd struct {
	Status  []string `short:"s" help:"Only show goals with these statuses." sep:","`
	Sort    string   `help:"Sort order (none|due|due-desc|status)." default:"none"`
	ShowIDs bool     `help:"Show goal IDs." name:"show-ids"`
}

func (c *GoalListCmd) Validate() error {
	if _, err := records.ParseGoalSort(c.Sort); err != nil {
		return err
	}
	for _, s := range c.Status {
		if _, err := parseStatus(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	order, err := records.ParseGoalSort(c.Sort)
	if err != nil {
		return err
	}
	var statuses []models.GoalStatus
	for _, s := range c.Status {
		st, err := parseStatus(s)
		if err != nil {
			return err
		}
		statuses = append(statuses, st)
	}

	all, err := ctx.Records.Goals(username)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		ctx.Println("You haven't set any goals yet. Add one with 'soulsync goal add'.")
		return nil
	}

	goals := records.SortGoals(records.FilterGoals(all, statuses), order)
	if len(goals) == 0 {
		ctx.Println("No goals match the selected filters.")
		return nil
	}

	ctx.Printf("Goals (%d of %d):\n", len(goals), len(all))
	for _, g := range goals {
		id := ""
		if c.ShowIDs {
			id = fmt.Sprintf(" (ID: %s)", g.ID)
		}
		ctx.Printf("  [%s] %s%s - due %s\n", g.Status.Display(), g.Title, id, dueText(g))
	}
	return nil
}

type GoalShowCmd struct {
	ID string `arg:"" help:"Goal ID or unique prefix."`
}

func (c *GoalShowCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	g, found, err := ctx.Records.GetGoal(username, c.ID)
	if err != nil {
		return err
	}
	if !found {
		return &cli.RejectedError{Message: "Goal not found."}
	}

	ctx.Printf("Title:       %s\n", g.Title)
	ctx.Printf("ID:          %s\n", g.ID)
	ctx.Printf("Status:      %s\n", g.Status.Display())
	ctx.Printf("Due:         %s\n", dueText(g))
	if g.Description != "" {
		ctx.Printf("Description: %s\n", g.Description)
	}
	return nil
}

func dueText(g models.Goal) string {
	if !g.HasDueDate() {
		return "N/A"
	}
	return *g.DueDate
}

func parseStatus(s string) (models.GoalStatus, error) {
	st, ok := models.ParseGoalStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown goal status %q", s)
	}
	return st, nil
}
