// Package response writes the JSON envelopes returned by every endpoint:
// {"data": ...}, {"message": ...} or {"error": ...}.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"crm/shared/constant"
	"crm/shared/failure"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(w http.ResponseWriter, code int, message string) {
	write(w, code, Message{Message: &message})
}

func WithJSON(w http.ResponseWriter, code int, payload any) {
	write(w, code, Data[any]{Data: &payload})
}

// WithError answers with the status carried by err. Errors that are not a
// failure.Failure are reported as a bare 500 so internal details stay in the
// logs.
func WithError(w http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	msg := http.StatusText(code)

	var f *failure.Failure
	if errors.As(err, &f) {
		msg = f.Message
	}

	write(w, code, Error{Error: &msg})
}

func WithRequestLimitExceeded(w http.ResponseWriter) {
	WithMessage(w, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(w http.ResponseWriter) {
	WithMessage(w, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(w http.ResponseWriter) {
	WithMessage(w, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

// WithFile sends content to be displayed inline, such as a proposal PDF.
func WithFile(w http.ResponseWriter, contentType, fileName string, content []byte) {
	w.Header().Set(constant.RequestHeaderContentType, contentType)
	w.Header().Set(constant.RequestHeaderContentDisposition, fmt.Sprintf("inline; filename=%q", fileName))
	w.Header().Set(constant.RequestHeaderContentLength, strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(content); err != nil {
		log.Warn().Err(err).Str("file", fileName).Msg("failed to write file response")
	}
}

func write(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")

		code = http.StatusInternalServerError
		body = []byte(`{"error":"Internal Server Error"}`)
	}

	w.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	w.WriteHeader(code)

	if _, err = w.Write(body); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
