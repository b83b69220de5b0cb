package mailinglist

import (
	"context"
)

// Result is the provider's acknowledgement of a subscription.
type Result struct {
	ID string
}

// Provider adds addresses to the newsletter list.
type Provider interface {
	Name() string
	Subscribe(ctx context.Context, email string) (*Result, error)
}
