package validators

import (
	"calendarbot/cmd/internal/utils"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"
)

// IsDate accepts a real calendar date written YYYY-MM-DD.
func IsDate(fl validator.FieldLevel) bool {
	_, err := utils.ParseDate(fl.Field().String())
	return err == nil
}

// IsClock accepts a 24h time of day, HH:MM or H:MM.
func IsClock(fl validator.FieldLevel) bool {
	_, err := utils.NormalizeClock(fl.Field().String())
	return err == nil
}

// New returns a validator with the calendar rules registered.
func New() *validator.Validate {
	validate := validator.New()
	Register(validate)
	return validate
}

// Register adds the calendar rules and reports fields by their json name.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("isodate", IsDate)
	_ = validate.RegisterValidation("clock", IsClock)
	_ = validate.RegisterValidation("notblank", nonstandard.NotBlank)
}
