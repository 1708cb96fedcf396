package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"
)

// registerExclusive adds a custom validator ensuring a field is not set together with any of
// the fields named in its parameter, e.g. `validate:"exclusive=Key KeyFile"`.
// Fields are reported by their flag names instead of their Go names.
func registerExclusive(validator *validator.Validator) error {
	if err := validator.RegisterValidationAndTranslation(
		"exclusive",
		validateExclusive,
		"{0} is mutually exclusive with {1}",
	); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	validator.Validator().RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", splitSize)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}

		return name
	})

	return nil
}

// validateExclusive checks that the field and each of the named fields are not both set.
// Returns false if the field and any other field have non-zero values.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() || field.IsZero() {
		return true
	}

	for _, name := range strings.Fields(fl.Param()) {
		other := fl.Parent().FieldByName(name)
		if other.IsValid() && !other.IsZero() {
			return false
		}
	}

	return true
}
