package application

import (
	"context"

	"github.com/tdex-network/futarchy-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

// PubSubService manages the webhooks notified of market events.
type PubSubService interface {
	AddWebhook(ctx context.Context, topic, endpoint, secret string) (string, error)
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context, topic string) ([]ports.Subscription, error)
}

func NewPubSubService(ps ports.PubSub) PubSubService {
	return pubsub.NewService(ps)
}
