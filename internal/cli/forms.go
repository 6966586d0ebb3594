package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
)

// GoalFormModel holds the string-typed values bound to the goal form.
type GoalFormModel struct {
	Title       string
	Description string
	DueDate     string
	Status      models.GoalStatus
}

func GoalFormFrom(in records.GoalInput) GoalFormModel {
	fm := GoalFormModel{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}
	if in.DueDate != nil {
		fm.DueDate = *in.DueDate
	}
	if fm.Status == "" || !fm.Status.Valid() {
		fm.Status = models.GoalToDo
	}
	return fm
}

func (fm GoalFormModel) Input() records.GoalInput {
	in := records.GoalInput{
		Title:       fm.Title,
		Description: fm.Description,
		Status:      fm.Status,
	}
	if due := strings.TrimSpace(fm.DueDate); due != "" {
		in.DueDate = &due
	}
	return in
}

func ValidateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("goal title cannot be empty")
	}
	return nil
}

// ValidateDueDate accepts an empty value or a YYYY-MM-DD date.
func ValidateDueDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return errors.New("due date must be YYYY-MM-DD")
	}
	return nil
}

func NewGoalForm(fm *GoalFormModel) *huh.Form {
	statusOptions := make([]huh.Option[models.GoalStatus], 0, len(models.GoalStatuses))
	for _, s := range models.GoalStatuses {
		statusOptions = append(statusOptions, huh.NewOption(s.Display(), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Goal Title").
				Value(&fm.Title).
				Validate(ValidateTitle),
			huh.NewText().
				Title("Description").
				Value(&fm.Description),
			huh.NewInput().
				Title("Due Date").
				Description("YYYY-MM-DD, leave empty for none").
				Value(&fm.DueDate).
				Validate(ValidateDueDate),
			huh.NewSelect[models.GoalStatus]().
				Title("Status").
				Options(statusOptions...).
				Value(&fm.Status),
		),
	).WithTheme(huh.ThemeDracula())
}

type MoodFormModel struct {
	Label       models.MoodLabel
	Description string
}

// NewMoodFormModel starts on the default mood.
func NewMoodFormModel() *MoodFormModel {
	return &MoodFormModel{Label: models.DefaultMood}
}

func NewMoodForm(fm *MoodFormModel) *huh.Form {
	options := make([]huh.Option[models.MoodLabel], 0, len(models.MoodLabels))
	for _, l := range models.MoodLabels {
		options = append(options, huh.NewOption(l.Emoji()+" "+string(l), l))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.MoodLabel]().
				Title("How are you feeling?").
				Options(options...).
				Value(&fm.Label),
			huh.NewText().
				Title("Describe your mood (optional)").
				Value(&fm.Description),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewJournalForm(content *string, prompt string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Journal Entry").
				Description(prompt).
				CharLimit(10000).
				Value(content),
		),
	).WithTheme(huh.ThemeDracula())
}

// PromptCredentials asks for whichever of username and password is empty.
// With confirm set the password is asked twice.
func PromptCredentials(username, password *string, confirm bool) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(username).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("username cannot be empty")
				}
				return nil
			}))
	}
	var again string
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
		if confirm {
			fields = append(fields, huh.NewInput().
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&again).
				Validate(func(s string) error {
					if s != *password {
						return errors.New("passwords do not match")
					}
					return nil
				}))
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula()).Run()
}

func Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	return ok, err
}
