package httputil

import (
	"regexp"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

var validate = newValidator()

var (
	alphaSpaceRe    = regexp.MustCompile(`^[a-zA-Z \-]+$`)
	alphaNumSpaceRe = regexp.MustCompile(`^[a-zA-Z0-9 \-/()]+$`)
	microchipRe     = regexp.MustCompile(`^[0-9]{15}$`)
	usernameRe      = regexp.MustCompile(`^[a-zA-Z0-9.]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Letters with spaces and hyphens (names, cities, breeds)
	v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRe.MatchString(fl.Field().String())
	})

	// Letters and digits with a few separators (addresses, concentrations, positions)
	v.RegisterValidation("alphanumspace", func(fl validator.FieldLevel) bool {
		return alphaNumSpaceRe.MatchString(fl.Field().String())
	})

	// Letters and digits, with dots allowed as a separator (vet.user)
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})

	// 15 numeric characters, the ISO microchip format
	v.RegisterValidation("microchip", func(fl validator.FieldLevel) bool {
		return microchipRe.MatchString(fl.Field().String())
	})

	// Calendar date or full timestamp
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return true
		}
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	})

	// At least 8 characters with a lowercase letter, an uppercase letter,
	// a digit and a symbol
	v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) < 8 {
			return false
		}
		var lower, upper, digit, symbol bool
		for _, r := range s {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			default:
				symbol = true
			}
		}
		return lower && upper && digit && symbol
	})

	return v
}

// Validate validates a struct using go-playground/validator
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		details := make(map[string]string)

		for _, e := range validationErrors {
			details[e.Field()] = formatValidationError(e)
		}

		return errors.Validation(details)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "alphaspace":
		return "can only consist of alphabetic characters"
	case "alphanumspace":
		return "can only consist of alphanumeric characters"
	case "username":
		return "can only consist of letters, digits and dots"
	case "microchip":
		return "must be 15 characters long and must be numeric"
	case "isodate":
		return "must be a valid date"
	case "strongpassword":
		return "password must contain at least 8 characters, 1 lowercase letter, 1 uppercase letter, 1 number, and 1 symbol"
	case "numeric":
		return "must be numeric"
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	default:
		return "invalid value"
	}
}

// RegisterCustomValidation registers a custom validation function
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}

// ParseDate parses a request date, accepting a calendar date or a full
// timestamp. Call only after the field passed isodate validation.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
