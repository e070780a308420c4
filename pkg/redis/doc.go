// Package redis provides session-store client utilities.
//
// This package wraps [github.com/redis/go-redis/v9] to provide client construction
// with retry, a pool manager handing out dedicated connections, a ping probe,
// and graceful shutdown.
//
// # Configuration
//
// Client settings are configured via functional options:
//
//   - WithPoolSize(n int): maximum sockets per client (default: 50)
//   - WithMinIdleConns(n int): sockets kept open while idle (default: 0)
//   - WithMaxIdleTime(d time.Duration): idle socket lifetime (default: 10m)
//   - WithRetry(attempts int, interval time.Duration): PING attempts on open (default: 3, 5s)
//   - WithTimeouts(dial, read, write time.Duration): defaults 5s, 3s, 3s
//
// # Usage
//
// An Endpoint describes one server; its Key (host:port) names the pool:
//
//	ep := redis.Endpoint{Host: "cache", Port: 6379, DB: 0}
//
//	m, err := redis.NewManager(ctx, ep, redis.WithRetry(1, 0))
//	if err != nil {
//		return err
//	}
//	p, err := pool.New(ctx, m, pool.WithMaxSize(50))
//
//	conn, err := p.Get(ctx)
//	if err != nil {
//		return err
//	}
//	defer p.Put(conn)
//
//	_, found, err := redis.Get(ctx, conn, "auth:token:"+token)
//
// # Health Checks
//
// [Probe] pings a pooled connection and fits pool.ProbeFunc:
//
//	reg := pool.NewRegistry(pool.RegistryConfig{Name: "session"}, redis.Probe)
//
// # Graceful Shutdown
//
// Close the pools first, then the client:
//
//	app.Run(addr,
//		objgate.ShutdownHook(pools.Shutdown()),
//		objgate.ShutdownHook(m.Shutdown()),
//	)
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//
//   - [ErrEmptyHost] - Endpoint without a host
//   - [ErrConnectionFailed] - Connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - Redis ping failed
//   - [ErrCommandFailed] - A command other than a clean miss failed
//
// Errors are wrapped using [errors.Join] to preserve the original error context.
package redis
