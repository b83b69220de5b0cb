package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/provider/mailinglist"
	"github.com/greenleaf-garden/storefront/internal/repository/memory"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/validator"
)

type mockMailingList struct {
	mock.Mock
}

func (m *mockMailingList) Name() string { return "mock-list" }

func (m *mockMailingList) Subscribe(ctx context.Context, email string) (*mailinglist.Result, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mailinglist.Result), args.Error(1)
}

func TestSubscribe(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	list := new(mockMailingList)
	pub := new(mockPublisher)
	svc := NewNewsletterService(repo, list, pub, newTestLogger())
	ctx := context.Background()

	list.On("Subscribe", mock.Anything, "ann@example.com").Return(&mailinglist.Result{ID: "mem_1"}, nil)
	pub.On("PublishSubscribed", mock.Anything, mock.AnythingOfType("*domain.Subscriber")).Return(nil)

	sub, err := svc.Subscribe(ctx, "  Ann@Example.COM ")

	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", sub.Email)
	assert.Equal(t, domain.SubscriberStatusSubscribed, sub.Status)
	assert.Equal(t, "mem_1", sub.ProviderID)

	stored, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "mem_1", stored.ProviderID)

	list.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubscribe_Duplicate(t *testing.T) {
	sf := newStorefront(t)
	ctx := context.Background()

	_, err := sf.newsletter.Subscribe(ctx, "ann@example.com")
	require.NoError(t, err)

	_, err = sf.newsletter.Subscribe(ctx, "ANN@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	list := new(mockMailingList)
	svc := NewNewsletterService(memory.NewSubscriberRepository(), list, quietPublisher(), newTestLogger())

	for _, email := range []string{"", "not-an-email", "a@"} {
		_, err := svc.Subscribe(context.Background(), email)

		require.Error(t, err, email)
		var valErr *validator.ValidationError
		assert.True(t, errors.As(err, &valErr), email)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	list.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
}

func TestSubscribe_ProviderFailureStoresNothing(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	list := new(mockMailingList)
	pub := new(mockPublisher)
	svc := NewNewsletterService(repo, list, pub, newTestLogger())
	ctx := context.Background()

	list.On("Subscribe", mock.Anything, "ann@example.com").Return(nil, errors.New("dial tcp: refused"))

	_, err := svc.Subscribe(ctx, "ann@example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))

	_, err = repo.GetByEmail(ctx, "ann@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	pub.AssertNotCalled(t, "PublishSubscribed", mock.Anything, mock.Anything)
}

func TestSubscribe_Unconfigured(t *testing.T) {
	svc := NewNewsletterService(memory.NewSubscriberRepository(), mailinglist.Unavailable{}, quietPublisher(), newTestLogger())

	_, err := svc.Subscribe(context.Background(), "ann@example.com")

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}
