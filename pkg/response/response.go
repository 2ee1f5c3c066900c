// Package response defines the JSON envelopes returned by the HTTP API.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Response wraps every successful payload.
type Response struct {
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata"`
}

func Success(data any) Response {
	return Response{
		Data:     data,
		Metadata: map[string]any{},
	}
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func Error(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}

var (
	EmptyRequestBodyResponse   = Error("empty request body")
	InvalidRequestBodyResponse = Error("invalid request body")
	UnauthorizedResponse       = Error("not authenticated")
	NotFoundResponse           = Error("link not found")
	ServerErrorResponse        = Error("server error occurred")
)

func ValidationErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Detail: "validation error",
		Errors: getValidationErrors(err),
	}
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "alphanum":
		return "only letters and digits are allowed"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []ValidationError {
	var validationErrs []ValidationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, ValidationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}
