package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	email    = "email"
	iso8601  = "iso8601"
	mx       = "max"
	mn       = "min"
	oneof    = "oneof"
	password = "password"
	required = "required"
	uuidTag  = "uuid"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case required:
		return fmt.Sprintf("%q is required", field)
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case iso8601:
		return fmt.Sprintf("%q must be a valid ISO 8601 date", field)
	case password:
		return fmt.Sprintf("%q must contain an uppercase letter, a lowercase letter, a number and one of !@#$%%^&*", field)
	case uuidTag:
		return fmt.Sprintf("%q must be a valid id", field)
	case mx:
		return formatBound(err, "less than or equal to")
	case mn:
		return formatBound(err, "greater than or equal to")
	case oneof:
		quoted := make([]string, 0)
		for _, p := range strings.Fields(err.Param()) {
			quoted = append(quoted, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(quoted, ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// formatBound words min/max failures. Numbers are compared by value, strings
// by character count and slices by element count.
func formatBound(err validator.FieldError, comparison string) string {
	field, limit := err.Field(), err.Param()

	var unit string
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, comparison, limit)
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = "element"
	default:
		unit = "character"
	}
	if limit != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, comparison, limit, unit)
}
