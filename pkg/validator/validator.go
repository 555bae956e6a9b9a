package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	phonePattern = regexp.MustCompile(`^\+?[0-9(][0-9 ()-]{5,19}$`)
)

// FieldError describes one rejected field of a club record.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// ValidationErrors collects every rejected field of a record, in declaration order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + " failed on " + fe.Tag
		if fe.Param != "" {
			parts[i] += "=" + fe.Param
		}
	}
	return strings.Join(parts, "; ")
}

// Fields lists the json names of the rejected fields.
func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for _, fe := range v {
		out = append(out, fe.Field)
	}
	return out
}

// ValidateStruct checks a record against its validate tags. Failures come back as ValidationErrors
// keyed by json field name.
func ValidateStruct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return failures
}

// ValidateVar validates a single value against a tag expression such as "omitempty,phone".
func ValidateVar(value any, tag string) error {
	return engine().Var(value, tag)
}

// RegisterValidation adds a custom rule to the shared engine.
func RegisterValidation(tag string, fn validator.Func) error {
	return engine().RegisterValidation(tag, fn)
}

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		// built-in names are fixed strings; registration cannot fail
		_ = validate.RegisterValidation("phone", isPhone)
		_ = validate.RegisterValidation("notblank", isNotBlank)
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func isPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func isNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return !field.IsZero()
	}
	return strings.TrimSpace(field.String()) != ""
}
