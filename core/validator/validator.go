package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by errors returned from Result.Err.
var ErrValidation = errors.New("validation failed")

// Schema validates data and reports the outcome.
type Schema func(data any) Result

// Result is the outcome of running a Schema.
type Result struct {
	Success bool
	Data    any
	Errors  []FieldError
}

// FieldError describes one failed check.
type FieldError struct {
	Path    string `json:"path"`    // JSON path, e.g. "items.2.price"
	Code    string `json:"code"`    // stable code, e.g. "tag.required"
	Message string `json:"message"` // human-readable message
}

// Error returns "path: message", or just the message without a path.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Errors is the error form of failed checks.
type Errors []FieldError

// Error joins the field messages.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Unwrap makes errors.Is(err, ErrValidation) report true.
func (e Errors) Unwrap() error {
	return ErrValidation
}

// StatusCode maps validation failures to 422 Unprocessable Entity.
func (e Errors) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// Err returns nil on success and the failures as Errors otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if len(r.Errors) == 0 {
		return Errors{{Code: "invalid", Message: "invalid data"}}
	}
	return Errors(r.Errors)
}

// Ok builds a successful Result.
func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed Result.
func Fail(errs ...FieldError) Result {
	return Result{Errors: errs}
}

// Func adapts a predicate into a Schema. A nil error means success and the
// data is passed through. FieldError and Errors values keep their paths.
func Func(fn func(data any) error) Schema {
	return func(data any) Result {
		err := fn(data)
		if err == nil {
			return Ok(data)
		}

		var errs Errors
		if errors.As(err, &errs) {
			return Fail(errs...)
		}
		var fe FieldError
		if errors.As(err, &fe) {
			return Fail(fe)
		}
		return Fail(FieldError{Code: "invalid", Message: err.Error()})
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// engine returns the shared go-playground validator configured to report JSON
// field names.
func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct returns a Schema that decodes data into T through its JSON form and
// validates the result with `validate` struct tags. On success Result.Data
// holds the T value.
func Struct[T any]() Schema {
	return func(data any) Result {
		var out T

		if data != nil {
			raw, err := json.Marshal(data)
			if err != nil {
				return Fail(FieldError{Code: "decode", Message: err.Error()})
			}
			if err := json.Unmarshal(raw, &out); err != nil {
				return Fail(decodeError(err))
			}
		}

		if reflect.Indirect(reflect.ValueOf(&out)).Kind() != reflect.Struct {
			return Ok(out)
		}

		if err := engine().Struct(&out); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return Fail(FieldError{Code: "invalid", Message: err.Error()})
			}
			errs := make([]FieldError, 0, len(verrs))
			for _, e := range verrs {
				errs = append(errs, FieldError{
					Path:    fieldPath(e.Namespace()),
					Code:    "tag." + e.Tag(),
					Message: tagMessage(e),
				})
			}
			return Fail(errs...)
		}

		return Ok(out)
	}
}

// fieldPath strips the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func decodeError(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return FieldError{
			Path:    typeErr.Field,
			Code:    "type",
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		}
	}
	return FieldError{Code: "decode", Message: err.Error()}
}

func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}
