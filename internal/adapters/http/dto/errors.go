// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
)

// ErrorResponse is the standard error envelope for all error responses.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "BAD_GATEWAY").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// UpstreamStatus is the status the quotes API answered with, when known.
	UpstreamStatus int `json:"upstreamStatus,omitempty"`

	// Details provides additional context about the error.
	// For validation errors, this contains field-level error messages.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	// ErrorCodeNotFound indicates the requested resource was not found.
	ErrorCodeNotFound = "NOT_FOUND"

	// ErrorCodeValidation indicates request validation failed.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// ErrorCodeBadRequest indicates the request was malformed.
	ErrorCodeBadRequest = "BAD_REQUEST"

	// ErrorCodeMethodNotAllowed indicates the route exists but not for this method.
	ErrorCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"

	// ErrorCodeBadGateway indicates the quotes API answered with a non-success status.
	ErrorCodeBadGateway = "BAD_GATEWAY"

	// ErrorCodeUpstreamDecode indicates the quotes API payload could not be decoded.
	ErrorCodeUpstreamDecode = "UPSTREAM_DECODE_ERROR"

	// ErrorCodeUnavailable indicates the quotes API could not be reached.
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"

	// ErrorCodeTimeout indicates the request deadline passed before the quotes API answered.
	ErrorCodeTimeout = "TIMEOUT"

	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal = "INTERNAL_ERROR"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorCodeBadGateway, ErrorCodeUpstreamDecode:
		return http.StatusBadGateway
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetailFor classifies err into a machine-readable detail.
// Unknown errors get a generic message to avoid leaking internals.
func ErrorDetailFor(err error) ErrorDetail {
	switch {
	case domain.IsNotFound(err):
		return ErrorDetail{Code: ErrorCodeNotFound, Message: err.Error()}

	case domain.IsValidation(err):
		detail := ErrorDetail{Code: ErrorCodeValidation, Message: err.Error()}

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			detail.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return detail

	case domain.IsBadResponse(err):
		status, _ := domain.StatusCode(err)
		return ErrorDetail{Code: ErrorCodeBadGateway, Message: err.Error(), UpstreamStatus: status}

	case domain.IsDecode(err):
		return ErrorDetail{Code: ErrorCodeUpstreamDecode, Message: err.Error()}

	case errors.Is(err, context.DeadlineExceeded):
		return ErrorDetail{Code: ErrorCodeTimeout, Message: "quotes API did not answer in time"}

	case domain.IsNetwork(err), domain.IsUnavailable(err):
		return ErrorDetail{Code: ErrorCodeUnavailable, Message: err.Error()}

	default:
		return ErrorDetail{Code: ErrorCodeInternal, Message: "an internal error occurred"}
	}
}

// MapDomainError maps a domain error to an HTTP status code and error response.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	detail := ErrorDetailFor(err)

	return HTTPStatusFromCode(detail.Code), &ErrorResponse{Error: detail}
}

// GetTraceID returns the OpenTelemetry trace ID of the request, or "".
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}

// HandleError writes the error response for err, including the trace ID.
func HandleError(c *gin.Context, err error) {
	status, errResp := MapDomainError(err)
	errResp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("internal error",
			"error", err.Error(),
			"trace_id", errResp.TraceID,
		)
	}

	c.JSON(status, errResp)
}

// RespondWithErrorCode writes an error response with a specific error code.
// Use this for adapter-level errors that don't originate from domain errors.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	errResp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fieldErrors)
	c.JSON(http.StatusBadRequest, errResp.WithTraceID(GetTraceID(c)))
}

// AbortWithErrorCode aborts the request chain with a specific error code.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}
