package mqtt

import "context"

// Client publishes schedule notifications to a broker.
type Client interface {
	// Publish sends payload to topic, retrying transient failures until the
	// context is done.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Disconnect closes the broker connection.
	Disconnect()
}
