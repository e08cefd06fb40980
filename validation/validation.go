package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kbukum/chunkscribe/errors"
)

// FieldError is one rejected field, as it appears in error details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field errors from form checks. Only the first
// failure per field is kept.
type Validator struct {
	fields []FieldError
	seen   map[string]bool
}

func New() *Validator {
	return &Validator{seen: make(map[string]bool)}
}

// Add records a failure unless field already failed.
func (v *Validator) Add(field, message string) *Validator {
	if !v.seen[field] {
		v.seen[field] = true
		v.fields = append(v.fields, FieldError{Field: field, Message: message})
	}
	return v
}

// Required fails on empty or blank values.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
	return v
}

// OptionalUUID fails on values that are present but not UUIDs.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value != "" {
		if _, err := uuid.Parse(value); err != nil {
			v.Add(field, "must be a valid UUID")
		}
	}
	return v
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.Add(field, message)
	}
	return v
}

func (v *Validator) Fields() []FieldError { return v.fields }

// Err is nil when every check passed.
func (v *Validator) Err() *errors.AppError {
	if len(v.fields) == 0 {
		return nil
	}
	return toAppError(v.fields)
}

var (
	structs     *validator.Validate
	structsOnce sync.Once
)

func engine() *validator.Validate {
	structsOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
		structs.RegisterTagNameFunc(jsonName)
	})
	return structs
}

// Struct checks s against its `validate` tags. Fields are named after
// their json tag.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var failed validator.ValidationErrors
	if !stderrors.As(err, &failed) {
		return errors.Validation(fmt.Sprintf("validation failed: %v", err))
	}
	v := New()
	for _, fe := range failed {
		v.Add(fe.Field(), describe(fe))
	}
	return v.Err()
}

var tagMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"oneof":    "must be one of: %s",
	"uuid":     "must be a valid UUID",
	"url":      "must be a valid URL",
}

func describe(fe validator.FieldError) string {
	format, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, fe.Param())
	}
	return format
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return snake(f.Name)
	}
	return name
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toAppError(fields []FieldError) *errors.AppError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}
