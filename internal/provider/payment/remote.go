package payment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/httpclient"
)

const remoteName = "payment gateway"

type chargeBody struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Token       string `json:"token"`
	Description string `json:"description,omitempty"`
}

type chargeResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
}

// Remote charges through an HTTP payment gateway:
//
//	POST {baseURL}/v1/charges {amount_minor, currency, token} → {id, status}
//
// Calls go through a circuit breaker, so a failing gateway is shed quickly.
type Remote struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewRemote creates a gateway provider. baseURL must not end in a slash.
func NewRemote(baseURL, apiKey string, logger *slog.Logger) *Remote {
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("payment-gateway"),
		logger,
	)
	return newRemote(cb, baseURL, apiKey, logger)
}

func newRemote(client *httpclient.CircuitBreakerClient, baseURL, apiKey string, logger *slog.Logger) *Remote {
	return &Remote{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Name returns the provider name.
func (r *Remote) Name() string {
	return "remote"
}

// Charge posts the charge. Declines (HTTP 402/422 or status "failed") are
// returned as a failed result; transport, 5xx and open-breaker errors are
// Upstream failures.
func (r *Remote) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	header := http.Header{}
	if r.apiKey != "" {
		header.Set("Authorization", "Bearer "+r.apiKey)
	}
	if req.IdempotencyKey != "" {
		header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	body := chargeBody{
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Token:       req.Token,
		Description: req.Description,
	}

	var resp chargeResponse
	err := r.client.DoJSON(ctx, http.MethodPost, r.baseURL+"/v1/charges", header, body, &resp)
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr) && errors.Is(err, apperrors.ErrPaymentFailed):
			return &ChargeResult{Status: StatusFailed, FailureReason: appErr.Message}, nil
		case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrUpstream):
			return nil, err
		default:
			return nil, apperrors.Upstream(remoteName, err)
		}
	}

	switch resp.Status {
	case StatusSucceeded, StatusFailed:
	default:
		r.logger.WarnContext(ctx, "payment gateway returned unknown status",
			slog.String("status", resp.Status),
			slog.String("charge_id", resp.ID),
		)
		return nil, apperrors.Upstream(remoteName, errors.New("unknown charge status "+resp.Status))
	}

	return &ChargeResult{
		ID:            resp.ID,
		Status:        resp.Status,
		FailureReason: resp.FailureReason,
	}, nil
}
