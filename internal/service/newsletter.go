package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/event"
	"github.com/greenleaf-garden/storefront/internal/provider/mailinglist"
	"github.com/greenleaf-garden/storefront/internal/repository"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/validator"
)

type subscribeInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// NewsletterService signs shoppers up for the newsletter.
type NewsletterService struct {
	repo      repository.SubscriberRepository
	provider  mailinglist.Provider
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewNewsletterService creates a new newsletter service.
func NewNewsletterService(
	repo repository.SubscriberRepository,
	prov mailinglist.Provider,
	publisher event.Publisher,
	logger *slog.Logger,
) *NewsletterService {
	return &NewsletterService{
		repo:      repo,
		provider:  prov,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe adds email to the mailing list. Known addresses are an
// AlreadyExists error. The subscriber is only stored once the provider has
// accepted it.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (sub *domain.Subscriber, err error) {
	defer func() { newsletterSignupsTotal.WithLabelValues(signupOutcome(err)).Inc() }()

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.Validate(subscribeInput{Email: email}); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, apperrors.AlreadyExists("subscriber", "email", email)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("get subscriber: %w", err)
	}

	res, err := s.provider.Subscribe(ctx, email)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Upstream("mailing list", err)
	}

	sub = &domain.Subscriber{
		Email:        email,
		Status:       domain.SubscriberStatusSubscribed,
		ProviderID:   res.ID,
		SubscribedAt: s.now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	if err := s.publisher.PublishSubscribed(ctx, sub); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish newsletter.subscribed event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "newsletter subscriber added",
		slog.String("provider", s.provider.Name()),
		slog.String("provider_id", res.ID),
	)

	return sub, nil
}

func signupOutcome(err error) string {
	switch {
	case err == nil:
		return "subscribed"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return "duplicate"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
