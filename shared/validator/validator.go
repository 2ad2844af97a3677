// Package validator decodes JSON request bodies and checks them against their
// `validate` tags. Failures come back as 400 failures with a readable message.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	val "github.com/go-playground/validator/v10"

	"crm/config"
	"crm/shared/base64"
	"crm/shared/failure"
)

const megabyte = 1 << 20

// Configurable is implemented by field types whose valid values come from
// the runtime configuration, such as the accepted currencies.
type Configurable interface {
	Validate(cfg *config.Config) error
}

var validate = newValidate()

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	custom := map[string]val.Func{
		"configured":  configured,
		"mimetypes":   dataURIType,
		"maxfilesize": dataURISize,
	}

	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

func configured(fl val.FieldLevel) bool {
	c, ok := fl.Field().Interface().(Configurable)
	if !ok {
		return false
	}

	return c.Validate(config.Get()) == nil
}

// dataURIType checks the content type of a base64 data uri against the
// space separated list in the tag parameter.
func dataURIType(fl val.FieldLevel) bool {
	uri, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	contentType := base64.GetContentType(uri)
	if contentType == "" {
		return false
	}

	for _, allowed := range strings.Fields(fl.Param()) {
		if allowed == contentType {
			return true
		}
	}

	return false
}

// dataURISize bounds the encoded length of a data uri, in megabytes.
func dataURISize(fl val.FieldLevel) bool {
	uri, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	limit, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		return false
	}

	return float64(len(uri)) <= limit*megabyte
}

// Validate decodes the JSON body in r into data and validates the result.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err))
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err))
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err))
	}

	return nil
}
