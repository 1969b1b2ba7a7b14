package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps validator failures to a field -> message table.
func FieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		out[fieldPath(fe)] = fieldMessage(fe)
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum is %s", fe.Param())
	case "max":
		return fmt.Sprintf("Maximum is %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "dive":
		return "Invalid element"
	default:
		return fmt.Sprintf("Invalid %s field", fe.Field())
	}
}
