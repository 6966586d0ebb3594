package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/soulsync/internal/models"
)

// GoalInput carries every mutable goal field.
type GoalInput struct {
	Title       string
	Description string
	DueDate     *string
	Status      models.GoalStatus
}

// InputFrom returns the current values of a goal, for partial edits.
func InputFrom(g models.Goal) GoalInput {
	return GoalInput{
		Title:       g.Title,
		Description: g.Description,
		DueDate:     g.DueDate,
		Status:      g.Status,
	}
}

// build validates the input and returns the goal it describes. Title and
// description are stored as given. stored is the status already on the goal;
// an unrecognized one is kept when the input leaves it unchanged.
func (in GoalInput) build(id string, stored models.GoalStatus) (models.Goal, Result, bool) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Goal{}, fail("Goal Title cannot be empty."), false
	}

	status := in.Status
	if status == "" {
		status = models.GoalToDo
	}
	parsed, known := models.ParseGoalStatus(string(status))
	keepStored := !known && stored != "" && status == stored
	if keepStored {
		parsed = stored
	} else if !known {
		return models.Goal{}, fail(fmt.Sprintf("Unknown goal status %q.", status)), false
	}

	var due *string
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d := strings.TrimSpace(*in.DueDate)
		due = &d
	}

	g := models.Goal{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     due,
		Status:      parsed,
	}
	validate := g.Validate
	if keepStored {
		validate = g.ValidateExceptStatus
	}
	if err := validate(); err != nil {
		return models.Goal{}, fail(fmt.Sprintf("Invalid goal: due date must be YYYY-MM-DD (%v).", err)), false
	}
	return g, Result{}, true
}

func (s *Service) AddGoal(username string, in GoalInput) (Result, error) {
	return s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		g, res, valid := in.build(s.uniqueID(rec.Goals), "")
		if !valid {
			return res, false
		}
		rec.Goals = append(rec.Goals, g)
		return ok("Goal added successfully!"), true
	})
}

// uniqueID draws ids until one is unused by the user's goals.
func (s *Service) uniqueID(goals []models.Goal) string {
	for {
		id := s.newID()
		taken := false
		for _, g := range goals {
			if g.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// UpdateGoal overwrites every mutable field of the first goal with the given
// id. The id itself never changes.
func (s *Service) UpdateGoal(username, id string, in GoalInput) (Result, error) {
	return s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		for i := range rec.Goals {
			if rec.Goals[i].Unreadable() || rec.Goals[i].ID != id {
				continue
			}
			g, res, valid := in.build(id, rec.Goals[i].Status)
			if !valid {
				return res, false
			}
			rec.Goals[i] = g
			return ok("Goal updated successfully!"), true
		}
		return fail("Goal not found."), false
	})
}

// DeleteGoal removes the goal with the given id, keeping the others in order.
func (s *Service) DeleteGoal(username, id string) (Result, error) {
	return s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		for i := range rec.Goals {
			if !rec.Goals[i].Unreadable() && rec.Goals[i].ID == id {
				rec.Goals = append(rec.Goals[:i:i], rec.Goals[i+1:]...)
				return ok("Goal deleted successfully!"), true
			}
		}
		return fail("Goal not found."), false
	})
}

func (s *Service) Goals(username string) ([]models.Goal, error) {
	rec, _, err := s.Record(username)
	if err != nil {
		return nil, err
	}
	return rec.Goals, nil
}

// GetGoal finds a goal by id, or by a unique id prefix of at least 4 characters.
func (s *Service) GetGoal(username, id string) (models.Goal, bool, error) {
	goals, err := s.Goals(username)
	if err != nil {
		return models.Goal{}, false, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, true, nil
		}
	}
	if len(id) < 4 {
		return models.Goal{}, false, nil
	}
	var match *models.Goal
	for i := range goals {
		if strings.HasPrefix(goals[i].ID, id) {
			if match != nil {
				return models.Goal{}, false, nil
			}
			match = &goals[i]
		}
	}
	if match == nil {
		return models.Goal{}, false, nil
	}
	return *match, true, nil
}

type GoalSort int

const (
	SortNone GoalSort = iota
	SortDueAsc
	SortDueDesc
	SortStatus
)

// ParseGoalSort accepts "none", "due", "due-desc" and "status".
func ParseGoalSort(s string) (GoalSort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "due", "due-asc":
		return SortDueAsc, nil
	case "due-desc":
		return SortDueDesc, nil
	case "status":
		return SortStatus, nil
	}
	return SortNone, fmt.Errorf("unknown sort %q (want none, due, due-desc or status)", s)
}

// FilterGoals keeps goals whose status is in statuses. An empty set keeps all.
func FilterGoals(goals []models.Goal, statuses []models.GoalStatus) []models.Goal {
	out := make([]models.Goal, 0, len(goals))
	if len(statuses) == 0 {
		return append(out, goals...)
	}
	allowed := make(map[models.GoalStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	for _, g := range goals {
		if allowed[g.Status] {
			out = append(out, g)
		}
	}
	return out
}

// SortGoals returns a sorted copy. Goals without a due date sort last in
// both due date orders; ties keep insertion order.
func SortGoals(goals []models.Goal, by GoalSort) []models.Goal {
	out := append([]models.Goal(nil), goals...)

	switch by {
	case SortDueAsc, SortDueDesc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if !a.HasDueDate() || !b.HasDueDate() {
				return a.HasDueDate() && !b.HasDueDate()
			}
			if by == SortDueAsc {
				return *a.DueDate < *b.DueDate
			}
			return *a.DueDate > *b.DueDate
		})
	case SortStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status.Rank() < out[j].Status.Rank()
		})
	}
	return out
}
