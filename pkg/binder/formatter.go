package binder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%s should be of type %s, but received %s", err.Field, err.Type.String(), err.Value)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%s should be of type %s, but received a different type", err.Key, err.Type.String())
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "date":
		return fmt.Sprintf("%s should be a date in the format of YYYY-MM-DD", field)
	case "email":
		return fmt.Sprintf("%s should be a valid email address", field)
	case "isbn_loose":
		return fmt.Sprintf("%s should be 10 to 13 digits, hyphens allowed", field)
	case "gt":
		return fmt.Sprintf("%s should be greater than %s", field, err.Param())
	case "gte":
		return fmt.Sprintf("%s should be greater than or equal to %s", field, err.Param())
	case "gtfield":
		return fmt.Sprintf("%s should be greater than %s", field, err.Param())
	case "ltfield":
		return fmt.Sprintf("%s should be less than %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s should have a length of at most %s", field, err.Param())
	case "min":
		return fmt.Sprintf("%s should have a length of at least %s", field, err.Param())
	case "ne":
		return fmt.Sprintf("%s should not be equal to %s", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s should be one of the following: %s", field, strings.Join(strings.Split(err.Param(), " "), ", "))
	case "required":
		return fmt.Sprintf("%s is required", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}
