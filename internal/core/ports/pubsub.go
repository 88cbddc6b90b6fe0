package ports

const AnyTopic = "*"
const UnspecifiedTopic = ""

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// PubSub defines the methods of the service that delivers the notifications
// emitted on market state transitions to external observers.
type PubSub interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish publishes a message for a certain topic. All clients subscribed
	// for such topic will receive the message.
	Publish(topic string, message string) error
	// Close releases any resource held by the service.
	Close() error
}

// Event is a message published for a topic.
type Event struct {
	Topic   string
	Payload string
}

// EventStream lets in-process listeners receive the published events.
type EventStream interface {
	// Listen returns the channel where events for the topic are sent, and a
	// function to stop listening. Any or unspecified topic listens to all
	// events.
	Listen(topic string) (<-chan Event, func())
}
