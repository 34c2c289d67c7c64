package acl

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jsamuelsen/bbquotes/internal/domain"
)

// maxErrorBodyBytes bounds how much of an error body is read for logging.
const maxErrorBodyBytes = 4 << 10

// ErrorResponse is the error body some upstream deployments return.
// Both {"error":"..."} and {"message":"..."} are accepted.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetMessage returns whichever message field is set.
func (e *ErrorResponse) GetMessage() string {
	if e.Error != "" {
		return e.Error
	}

	return e.Message
}

// ParseErrorResponse parses an upstream error body.
// Returns nil if the body is empty, not JSON or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBodyBytes)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError maps the outcome of one upstream call to a domain error.
// It returns nil for a 2xx response. The response body is not consumed.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return domain.NewNetworkError(serviceName, clientErr)
	}

	if resp == nil {
		return domain.NewNetworkError(serviceName, errNoResponse)
	}

	if isSuccess(resp.StatusCode) {
		return nil
	}

	return domain.NewBadResponseError(operation, resp.StatusCode)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
