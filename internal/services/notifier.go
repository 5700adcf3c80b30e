package services

import (
	"context"

	"centavo/internal/amqp"
	"centavo/internal/logger"
)

// amqpNotifier publishes events through the AMQP client. Errors are logged
// and swallowed: notification delivery must never affect the core mutation
// that produced the event.
type amqpNotifier struct {
	client *amqp.Client
}

// NewAMQPNotifier creates a Notifier backed by the given AMQP client.
func NewAMQPNotifier(client *amqp.Client) Notifier {
	return &amqpNotifier{client: client}
}

func (n *amqpNotifier) Notify(kind string, userID uint, payload map[string]any) {
	event := amqp.NewEvent(kind, userID, payload)
	if err := n.client.Publish(context.Background(), event); err != nil {
		logger.Get().Errorw("failed to publish notification event",
			"kind", kind,
			"user_id", userID,
			"error", err,
		)
	}
}

// nopNotifier discards events. Used when no broker is configured and in tests.
type nopNotifier struct{}

// NewNopNotifier creates a Notifier that does nothing.
func NewNopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) Notify(string, uint, map[string]any) {}
