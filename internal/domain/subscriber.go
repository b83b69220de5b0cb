package domain

import "time"

// SubscriberStatusSubscribed is the only state a stored subscriber can be in.
const SubscriberStatusSubscribed = "subscribed"

// Subscriber is a newsletter sign-up accepted by the mailing-list provider.
type Subscriber struct {
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	ProviderID   string    `json:"provider_id,omitempty"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
