// Package validation wires go-playground/validator with the storefront's
// custom rules so the API and the admin forms reject the same input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MarginMin = 0
	MarginMax = 40
	PhoneLen  = 10
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneShape = regexp.MustCompile(`^[0-9]{10}$`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom rules registered:
//
//	emailshape  something@domain.tld, no whitespace
//	phone10     exactly ten ASCII digits
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report json names so errors line up with request fields
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
		instance = v
	})
	return instance
}

func IsEmail(s string) bool { return emailShape.MatchString(s) }

func IsPhone(s string) bool { return phoneShape.MatchString(s) }

func IsMargin(m int) bool { return m >= MarginMin && m <= MarginMax }

// Struct validates s and returns nil or a FieldErrors.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// FieldErrors maps a field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "emailshape":
		return "must be a valid email address"
	case "phone10":
		return fmt.Sprintf("must be exactly %d digits", PhoneLen)
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "url":
		return "must be a URL"
	default:
		return "is invalid"
	}
}
