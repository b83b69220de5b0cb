package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		httpCode int
		contains string
	}{
		{
			name:     "nested error body, declined",
			status:   http.StatusUnprocessableEntity,
			body:     `{"error":{"code":"card_declined","message":"insufficient funds"}}`,
			sentinel: apperrors.ErrPaymentFailed,
			httpCode: http.StatusUnprocessableEntity,
			contains: "insufficient funds",
		},
		{
			name:     "payment required",
			status:   http.StatusPaymentRequired,
			body:     `{"code":"expired_card","message":"card expired"}`,
			sentinel: apperrors.ErrPaymentFailed,
			httpCode: http.StatusUnprocessableEntity,
			contains: "card expired",
		},
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `invalid email`,
			sentinel: apperrors.ErrInvalidInput,
			httpCode: http.StatusBadRequest,
			contains: "invalid email",
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"error":{"code":"list_missing","message":"no such list"}}`,
			sentinel: apperrors.ErrNotFound,
			httpCode: http.StatusNotFound,
		},
		{
			name:     "conflict",
			status:   http.StatusConflict,
			body:     `{"message":"member exists"}`,
			sentinel: apperrors.ErrConflict,
			httpCode: http.StatusConflict,
			contains: "member exists",
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     ``,
			sentinel: apperrors.ErrUpstream,
			httpCode: http.StatusServiceUnavailable,
		},
		{
			name:     "unauthorized key is an upstream problem",
			status:   http.StatusUnauthorized,
			body:     `{"message":"bad api key"}`,
			sentinel: apperrors.ErrUpstream,
			httpCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, tt.body), "payment-gateway")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.httpCode, appErr.Status)
			if tt.contains != "" {
				assert.Contains(t, appErr.Message, tt.contains)
			}
		})
	}
}

func TestParseResponseError_UpstreamHidesDetail(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadGateway, "<html>nginx</html>"), "mailing-list")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "mailing-list is temporarily unavailable", appErr.Message)
	assert.Contains(t, err.Error(), "status 502")
}
