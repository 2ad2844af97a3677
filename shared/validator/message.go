package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var templates = map[string]string{
	"required": "%f is required",
	"email":    "%f must be a valid email address",
	"uuid":     "%f must be a valid UUID",
	"url":      "%f must be a valid URL",
	"oneof":    "%f must be one of %p",
	"min":      "%f must be at least %p",
	"max":      "%f must be at most %p",
	"gte":      "%f must be greater than or equal to %p",
	"gt":       "%f must be greater than %p",
	"lte":      "%f must be less than or equal to %p",
	"len":      "%f must be %p characters long",
	"datetime": "%f must match the format %p",
	"gtefield": "%f must not be before %p",
	"gtfield":  "%f must be after %p",
	"nefield":  "%f must differ from %p",

	"mimetypes":   "%f must be one of %p",
	"maxfilesize": "%f must not exceed %p MB",
	"configured":  "%f is not supported",
}

// message renders one sentence per failed field, in declaration order.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrors))

	for _, fe := range fieldErrors {
		tmpl, ok := templates[fe.Tag()]
		if !ok {
			parts = append(parts, fe.Field()+" is invalid")

			continue
		}

		parts = append(parts, strings.NewReplacer("%f", fe.Field(), "%p", fe.Param()).Replace(tmpl))
	}

	return strings.Join(parts, "; ")
}
