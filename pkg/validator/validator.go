package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var (
	// hhmmRegex matches 24h clock times such as 7:05 or 23:59
	hhmmRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

	// hexColorRegex matches #RRGGBB
	hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Violation is one failed field constraint, keyed by its JSON path
type Violation struct {
	Field   string
	Message string
}

// Validator validates request structs declared with `validate` tags
type Validator struct {
	validate *playground.Validate
}

// New creates a validator that reports fields by their JSON names
func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("hhmm", func(fl playground.FieldLevel) bool {
		return hhmmRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("hexcolor6", func(fl playground.FieldLevel) bool {
		return hexColorRegex.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s and returns every violation found.
// A non-nil error is returned only when s cannot be validated at all.
func (v *Validator) Struct(s interface{}) ([]Violation, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	violations := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return violations, nil
}

// fieldPath strips the root struct name: "CreateRouteRequest.stops[0].name" -> "stops[0].name"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email address"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "hexcolor6":
		return "must be a hex color like #2563eb"
	case "min":
		if isText(fe.Kind()) {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isText(fe.Kind()) {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	}
	return "is invalid"
}

func isText(k reflect.Kind) bool {
	return k == reflect.String
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}
