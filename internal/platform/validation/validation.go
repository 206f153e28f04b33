// Package validation binds go-playground/validator to Echo.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":   "is required",
	"oneof":      "must be one of: %s",
	"gte":        "must be greater than or equal to %s",
	"lte":        "must be less than or equal to %s",
	"gt":         "must be greater than %s",
	"max":        "must be at most %s characters",
	"uuid":       "must be a valid UUID",
	"datetime":   "must use the layout %s",
	"not_future": "must not be in the future",
	"facility":   "must contain only letters, digits and underscores",
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterValidation("not_future", notFuture)
	v.RegisterValidation("facility", facilityCode)
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// Message renders validation errors as "field message, field message". Other
// errors are returned as their text.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" "+describe(fe))
	}
	return strings.Join(parts, ", ")
}

func describe(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		param := fe.Param()
		if fe.Tag() == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
		return fmt.Sprintf(msg, param)
	}
	return msg
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func notFuture(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		return v.IsZero() || !v.After(time.Now().Add(time.Minute))
	default:
		return true
	}
}

func facilityCode(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
