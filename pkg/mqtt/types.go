package mqtt

import (
	"context"
)

// MessageHandler is the callback invoked for each received MQTT message.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is a thin interface over the underlying paho implementation.
type Client interface {
	// Start initiates the connection to the broker. It is non-blocking;
	// use AwaitConnection to wait for the session to come up.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// Publish sends a message to the specified topic.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe registers a handler for a topic filter. The subscription is
	// replayed automatically after a reconnect.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error
}
