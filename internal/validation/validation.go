package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"mindfuelAPI/internal/apperr"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func Init() {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterValidation("plan", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "pro-monthly", "pro-annual", "premium-monthly", "premium-annual":
				return true
			}
			return false
		})
	})
}

// Struct validates v and reports the first failing field as an
// InvalidArgument error.
func Struct(v any) error {
	Init()
	if err := validate.Struct(v); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			first := vErrs[0]
			return apperr.InvalidArgument("field %q failed %q validation", first.Field(), first.Tag())
		}
		return apperr.InvalidArgument("%v", err)
	}
	return nil
}
