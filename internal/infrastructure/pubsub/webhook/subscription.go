package webhookpubsub

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

type Subscription struct {
	ID        string
	Event     string `badgerhold:"index"`
	Endpoint  string
	Secret    string
	CreatedAt int64
}

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, &sub)
	}
	return subs
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	if len(event) <= 0 {
		return nil, ErrMissingTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEndpoint, endpoint)
	}
	id := uuid.New().String()
	return &Subscription{id, event, endpoint, secret, time.Now().Unix()}, nil
}

func (s *Subscription) Topic() string {
	return s.Event
}

func (s *Subscription) Id() string {
	return s.ID
}

func (s *Subscription) NotifyAt() string {
	return s.Endpoint
}

func (s *Subscription) IsSecured() bool {
	return len(s.Secret) > 0
}
