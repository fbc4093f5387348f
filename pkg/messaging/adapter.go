package messaging

import (
	"context"
)

// Consume subscribes to channel and feeds every message to handler until ctx
// is done or the subscription closes. Handler errors go to onError and do not
// stop consumption.
func Consume(ctx context.Context, broker Subscriber, channel string, handler Handler, onError func(error)) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
