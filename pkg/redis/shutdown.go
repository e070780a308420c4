package redis

import (
	"context"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"
)

// Shutdown returns a hook that closes client. Closing an already closed
// client is not an error, so the hook is safe to register more than once.
//
// Example:
//
//	app.Run(addr, objgate.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		if client == nil {
			return nil
		}
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
		return nil
	}
}
