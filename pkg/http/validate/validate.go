package validate

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// InvalidFieldsMessage is the message attached to every validation failure.
const InvalidFieldsMessage = "missing or invalid required fields"

// FieldViolation describes one failed rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Validator wraps go-playground/validator with json field names.
type Validator struct {
	v *validator.Validate
}

// New builds a validator that reports json tag names instead of Go field names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and converts failures into a validation AppError.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return httperrors.Validation(InvalidFieldsMessage, nil)
	}
	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return httperrors.Validation(InvalidFieldsMessage, violations)
}

// DecodeJSON decodes the request body into dst and validates it.
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return httperrors.Validation("invalid JSON payload", []FieldViolation{{
			Field:   "body",
			Rule:    "json",
			Message: err.Error(),
		}}).WithCode(httperrors.ErrCodeInvalidRequest)
	}
	return v.Struct(dst)
}

// DecodeQuery copies query parameters into the string and int fields of dst
// tagged with `query:"name"`, then validates dst. dst must be a struct pointer.
func (v *Validator) DecodeQuery(r *http.Request, dst interface{}) error {
	values := r.URL.Query()
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := rt.Field(i).Tag.Get("query")
		raw := values.Get(name)
		if name == "" || raw == "" {
			continue
		}
		field := rv.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return httperrors.Validation(InvalidFieldsMessage, []FieldViolation{{
					Field:   name,
					Rule:    "numeric",
					Message: fmt.Sprintf("%s must be a number", name),
				}})
			}
			field.SetInt(n)
		}
	}
	return v.Struct(dst)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		switch fe.Kind() {
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at least %s items", fe.Field(), fe.Param())
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at most %s items", fe.Field(), fe.Param())
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "eq":
		return fmt.Sprintf("%s must be %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
