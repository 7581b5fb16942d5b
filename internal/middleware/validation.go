package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/praxisdesk/practice-api/internal/model"
)

// RegisterValidators installs the domain binding validators on gin's
// validator engine. Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := model.ParseISODate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "hourminute", func(fl validator.FieldLevel) bool {
		_, err := model.ParseHourMinute(fl.Field().String())
		return err == nil
	})

	// Report field names as they appear on the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}
