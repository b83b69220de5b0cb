package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// providerError covers the error shapes provider APIs commonly answer with:
// {"error":{"code","message"}} or {"code","message"}.
type providerError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError consumes and closes a non-2xx response and returns the
// matching AppError. Declines (402/422) become PaymentFailed, other 4xx become
// InvalidInput or NotFound, and anything else is an Upstream failure.
func ParseResponseError(resp *http.Response, provider string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream(provider, fmt.Errorf("status %d, unreadable body: %w", resp.StatusCode, err))
	}

	code, message := "", strings.TrimSpace(string(raw))
	var pe providerError
	if json.Unmarshal(raw, &pe) == nil {
		switch {
		case pe.Error != nil:
			code, message = pe.Error.Code, pe.Error.Message
		case pe.Message != "":
			code, message = pe.Code, pe.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		return apperrors.PaymentFailed(message)
	case http.StatusNotFound:
		return apperrors.NotFound(provider+" resource", code)
	case http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s rejected the request: %s", provider, message))
	case http.StatusConflict:
		return apperrors.Conflict(fmt.Sprintf("%s: %s", provider, message))
	default:
		return apperrors.Upstream(provider, fmt.Errorf("status %d (%s): %s", resp.StatusCode, code, message))
	}
}
