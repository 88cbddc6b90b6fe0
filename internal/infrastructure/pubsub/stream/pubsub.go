package streampubsub

import "github.com/tdex-network/futarchy-daemon/internal/core/ports"

type pubsub struct {
	ports.PubSub
	hub *Hub
}

// NewPubSub returns a ports.PubSub that broadcasts every published message
// to the listeners of the hub before handing it to the given pubsub, which
// keeps managing the subscriptions.
func NewPubSub(ps ports.PubSub, hub *Hub) ports.PubSub {
	return &pubsub{ps, hub}
}

func (p *pubsub) Publish(topic, message string) error {
	p.hub.Broadcast(topic, message)
	return p.PubSub.Publish(topic, message)
}

func (p *pubsub) Close() error {
	p.hub.Close()
	return p.PubSub.Close()
}
