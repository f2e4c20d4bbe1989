package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of shelf.Notifier.
type Notifier struct {
	PublishFn func(ctx context.Context, channel string, payload any) error
}

func (n *Notifier) Publish(ctx context.Context, channel string, payload any) error {
	return n.PublishFn(ctx, channel, payload)
}
