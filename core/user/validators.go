package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/studybuddy/backend/core"
)

var (
	roleTag  = "role"
	roleText = "must be one of: student, instructor, admin"
)

func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, roleTag, roleText)
}

// roleValidation only allows values from the closed Role set.
func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).IsValid()
}
