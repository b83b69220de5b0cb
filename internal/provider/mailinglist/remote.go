package mailinglist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/httpclient"
)

const remoteName = "mailing list"

type memberBody struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

type memberResponse struct {
	ID string `json:"id"`
}

// Remote subscribes through a mailing-list HTTP API:
//
//	POST {baseURL}/lists/{listID}/members {email, status:"subscribed"} → {id}
type Remote struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	listID  string
	apiKey  string
}

// NewRemote creates a mailing-list provider for listID.
func NewRemote(baseURL, listID, apiKey string, logger *slog.Logger) *Remote {
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("mailing-list"),
		logger,
	)
	return newRemote(cb, baseURL, listID, apiKey)
}

func newRemote(client *httpclient.CircuitBreakerClient, baseURL, listID, apiKey string) *Remote {
	return &Remote{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		listID:  listID,
		apiKey:  apiKey,
	}
}

// Name returns the name of this provider.
func (r *Remote) Name() string {
	return "remote"
}

// Subscribe adds email to the list. A provider that already knows the
// address (409) is treated as success. Every other failure is Upstream.
func (r *Remote) Subscribe(ctx context.Context, email string) (*Result, error) {
	header := http.Header{}
	if r.apiKey != "" {
		header.Set("Authorization", "Bearer "+r.apiKey)
	}

	endpoint := r.baseURL + "/lists/" + url.PathEscape(r.listID) + "/members"
	var resp memberResponse
	err := r.client.DoJSON(ctx, http.MethodPost, endpoint, header, memberBody{Email: email, Status: "subscribed"}, &resp)
	switch {
	case err == nil:
		return &Result{ID: resp.ID}, nil
	case errors.Is(err, apperrors.ErrConflict):
		return &Result{}, nil
	case errors.Is(err, apperrors.ErrUpstream):
		return nil, err
	default:
		return nil, apperrors.Upstream(remoteName, err)
	}
}
