package webhookpubsub

import "errors"

var (
	// ErrMissingTopic is returned when subscribing without an event.
	ErrMissingTopic = errors.New("missing event")
	// ErrInvalidEndpoint is returned when the webhook endpoint is not an
	// http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid webhook endpoint, must be a valid http url")
	// ErrSubscriptionNotFound is returned when removing an unknown webhook.
	ErrSubscriptionNotFound = errors.New("webhook not found")
	// ErrServiceClosed is returned by any operation after Close.
	ErrServiceClosed = errors.New("pubsub service is closed")
)
