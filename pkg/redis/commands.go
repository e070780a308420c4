package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Get reads a string key on a pooled connection.
// A missing key yields found == false and a nil error.
func Get(ctx context.Context, conn *redis.Conn, key string) (value string, found bool, err error) {
	value, err = conn.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, errors.Join(ErrCommandFailed, err)
	}
	return value, true, nil
}
