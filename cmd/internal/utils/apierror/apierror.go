package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what services hand back to routes. It is serialized as is.
type ErrorResponse interface {
	error
	Code() int
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type apiError struct {
	Status  int          `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *apiError) Code() int {
	return e.Status
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusClientClosedRequest is the nginx convention for a caller that went
// away before the answer was ready.
const StatusClientClosedRequest = 499

var (
	InternalServerError = NewSimple(http.StatusInternalServerError, "Internal server error")
	MalformedBodyError  = NewSimple(http.StatusBadRequest, "Malformed request body")
	NotFoundError       = NewSimple(http.StatusNotFound, "Resource not found")
	InvalidSessionError = NewSimple(http.StatusUnauthorized, "Invalid or expired session token")
	MissingInputError   = NewSimple(http.StatusBadRequest, "Input must not be empty")
	UpstreamModelError  = NewSimple(http.StatusBadGateway, "The language model could not be reached")
	OverlapError        = NewSimple(http.StatusConflict, "The appointment overlaps with an existing appointment")

	ClientClosedRequestError = NewSimple(StatusClientClosedRequest, "The request was canceled before it completed")
	TimeoutError             = NewSimple(http.StatusGatewayTimeout, "The request timed out")
)

func NewSimple(code int, message string) ErrorResponse {
	return &apiError{Status: code, Message: message}
}

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", name))
}

func NewInvalidParamTypeError(name, want string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Parameter '%s' must be of type %s", name, want))
}

// FromValidationError turns validator output into a 400 listing each failed field.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	details := make([]FieldError, len(verrs))
	names := make([]string, len(verrs))
	for i, fe := range verrs {
		details[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
		names[i] = fe.Field()
	}
	return &apiError{
		Status:  http.StatusBadRequest,
		Message: "Invalid fields: " + strings.Join(names, ", "),
		Details: details,
	}
}
