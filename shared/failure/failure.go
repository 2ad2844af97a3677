// Package failure carries client facing errors together with the HTTP status
// they should be answered with.
package failure

import (
	"errors"
	"net/http"
)

type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ForbiddenError = New(http.StatusForbidden, "You don't have the required permissions")

func (e *Failure) Error() string {
	return e.Message
}

func New(code int, message string) *Failure {
	return &Failure{Code: code, Message: message}
}

// BadRequest converts err into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return New(http.StatusBadRequest, err.Error())
}

func BadRequestFromString(msg string) error {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) error {
	return New(http.StatusForbidden, msg)
}

// NotFound reports a missing record, e.g. NotFound("lead") reads "lead not found".
func NotFound(entity string) error {
	return New(http.StatusNotFound, entity+" not found")
}

func Conflict(msg string) error {
	return New(http.StatusConflict, msg)
}

// GetCode returns the status carried by err, 500 for anything that is not a Failure.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
