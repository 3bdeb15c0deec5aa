package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/mireska/cartsvc/pkg/errors"
)

const maxErrorBody = 1 << 20

// errorBody mirrors the `{"error":{"code","message"}}` envelope used by the
// platform's services.
type errorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ResponseError translates a non-2xx downstream response into an
// application error, preserving the downstream code and message when the
// body follows the standard envelope. The body is consumed and closed.
func ResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (unreadable body: %w)", service, resp.StatusCode, err)
	}

	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Error != nil {
		return mapStatus(resp.StatusCode, body.Error.Code, body.Error.Message, service)
	}
	return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, raw)
}

func mapStatus(status int, code, message, service string) error {
	qualified := fmt.Sprintf("%s: %s", service, message)
	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(service, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusUnprocessableEntity:
		return apperrors.Unprocessable(qualified)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", service, status, code, message)
	default:
		return &apperrors.Error{Code: code, Message: qualified, Status: status}
	}
}
