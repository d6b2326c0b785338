package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Pesokrava/products-ms/internal/domain"
)

// Error codes carried in reply envelopes
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL"
)

const internalMessage = "Internal server error"

// ErrorBody describes a failed command
type ErrorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

// Envelope is the reply written by the microservice
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// Reply is an envelope as read by a requester; Data is left undecoded
type Reply struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

// Success wraps command output
func Success(data interface{}) Envelope {
	return Envelope{Data: data}
}

// FromError classifies err into an error envelope. Unclassified errors are
// reported as internal without their details.
func FromError(err error) Envelope {
	body := &ErrorBody{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: internalMessage,
	}

	var domainErr *domain.Error
	hasDetails := errors.As(err, &domainErr)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		body.Status = http.StatusBadRequest
		body.Code = CodeInvalidInput
		body.Message = err.Error()
		if hasDetails {
			body.Field = domainErr.Field
			body.Rule = domainErr.Rule
		}
	case errors.Is(err, domain.ErrNotFound):
		body.Status = http.StatusNotFound
		body.Code = CodeNotFound
		body.Message = err.Error()
	}

	return Envelope{Error: body}
}

// StatusOf returns the envelope status err would be reported with
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return FromError(err).Error.Status
}

// Encode marshals env, falling back to an internal error envelope
func Encode(env Envelope) []byte {
	body, err := json.Marshal(env)
	if err != nil {
		body, _ = json.Marshal(FromError(err))
	}
	return body
}
