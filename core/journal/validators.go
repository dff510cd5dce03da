package journal

import (
	"time"

	"github.com/go-playground/validator/v10"

	"dnevnik/core"
)

var (
	attStatusTag  = "attstatus"
	attStatusText = "invalid attendance status"

	gradeTypeTag  = "gradetype"
	gradeTypeText = "invalid grade type"

	dateOnlyTag  = "dateonly"
	dateOnlyText = "must be a calendar date (YYYY-MM-DD)"
)

func init() {
	_ = core.Validate.RegisterValidation(attStatusTag, attStatusValidation)
	core.RegisterCustomTranslation(attStatusTag, attStatusText)

	_ = core.Validate.RegisterValidation(gradeTypeTag, gradeTypeValidation)
	core.RegisterCustomTranslation(gradeTypeTag, gradeTypeText)

	_ = core.Validate.RegisterValidation(dateOnlyTag, dateOnlyValidation)
	core.RegisterCustomTranslation(dateOnlyTag, dateOnlyText)
}

func attStatusValidation(fl validator.FieldLevel) bool {
	return AttendanceStatus(fl.Field().String()).Valid()
}

func gradeTypeValidation(fl validator.FieldLevel) bool {
	return GradeType(fl.Field().String()).Valid()
}

func dateOnlyValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}
