// Package notifier delivers operator notifications over independent
// best-effort channels.
package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Channel delivers one message to one destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, message string) error
}

// Notifier fans a message out to every configured channel. Delivery is
// best effort: a failing channel is logged and never propagated to the
// caller, and never prevents the remaining channels from being
// attempted. A Notifier with no channels is valid and does nothing.
type Notifier struct {
	channels []Channel
	logger   *zap.Logger
}

// New creates a notifier over the given channels.
func New(logger *zap.Logger, channels ...Channel) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{channels: channels, logger: logger}
}

// Notify sends message to every channel in order.
func (n *Notifier) Notify(ctx context.Context, message string) {
	for _, ch := range n.channels {
		if err := ch.Send(ctx, message); err != nil {
			n.logger.Warn("notification channel failed",
				zap.String("channel", ch.Name()),
				zap.Error(err))
		}
	}
}
