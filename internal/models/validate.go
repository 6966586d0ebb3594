package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("goal_status", func(fl validator.FieldLevel) bool {
		return GoalStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("mood_label", func(fl validator.FieldLevel) bool {
		_, ok := ParseMoodLabel(fl.Field().String())
		return ok
	})

	return v
}
