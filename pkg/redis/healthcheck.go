package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Probe pings a pooled connection. It fits pool.ProbeFunc[*redis.Conn].
// A plain checkout proves nothing for go-redis because connections dial
// lazily, so the probe issues a PING.
func Probe(ctx context.Context, conn *redis.Conn) error {
	if conn == nil {
		return ErrHealthcheckFailed
	}
	if err := conn.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}
