package req

import (
	"errors"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/xy-planning-network/trailhead"
)

// MaskTag marks a struct field whose value never appears in a ValidationError,
// e.g. `mask:"true"` on a password.
const MaskTag = "mask"

type validator struct {
	valid *v10.Validate
}

func newValidator() validator {
	v := v10.New()
	v.RegisterValidation("enum", validateEnumerable)
	v.RegisterTagNameFunc(fieldName)

	return validator{v}
}

// fieldName names a field after its "json" tag, then its "schema" tag.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "schema"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}

	return ""
}

// validate checks the fields on structPtr match the rules set by "validate" struct tags,
// returning each failure as a ValidationError in ValidationErrors.
func (v validator) validate(structPtr any) error {
	err := v.valid.Struct(structPtr)
	if err == nil {
		return nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	t := reflect.Indirect(reflect.ValueOf(structPtr)).Type()

	validateErrs := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		validateErrs = append(validateErrs, toValidationError(t, fe))
	}

	return validateErrs
}

// toValidationError translates fe, raised on a field of t, into a ValidationError.
func toValidationError(t reflect.Type, fe v10.FieldError) ValidationError {
	field := fe.Namespace()
	if _, after, ok := strings.Cut(field, "."); ok {
		field = after
	}

	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	rule += "; " + fe.Type().String()

	ve := ValidationError{Field: field, Got: fe.Value(), Rule: rule}
	if masked(t, fe.StructNamespace()) {
		ve.Got = trailhead.LogMaskVal
	}

	return ve
}

// masked reports whether the field at ns, relative to t, carries MaskTag.
func masked(t reflect.Type, ns string) bool {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == t.Name() {
		parts = parts[1:]
	}

	for i, part := range parts {
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
			t = t.Elem()
		}

		if t.Kind() != reflect.Struct {
			return false
		}

		// slice elements are namespaced as Field[i]
		part, _, _ = strings.Cut(part, "[")
		sf, ok := t.FieldByName(part)
		if !ok {
			return false
		}

		if sf.Tag.Get(MaskTag) == "true" {
			return true
		}

		if i < len(parts)-1 {
			t = sf.Type
		}
	}

	return false
}

// validateEnumerable validates whether field is a valid Enumerable or slice of valid Enumerable.
func validateEnumerable(fl v10.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return checkEnums(field)
	}

	vals := make([]reflect.Value, field.Len())
	for i := range vals {
		vals[i] = field.Index(i)
	}

	return checkEnums(vals...)
}

// checkEnums asserts each [reflect.Value] is a valid Enumerable.
func checkEnums(items ...reflect.Value) bool {
	if len(items) == 0 {
		return false
	}

	for _, item := range items {
		if !item.IsValid() || !item.CanInterface() {
			return false
		}

		enum, ok := item.Interface().(trailhead.Enumerable)
		if !ok || enum.Valid() != nil {
			return false
		}
	}

	return true
}
