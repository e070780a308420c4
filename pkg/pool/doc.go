// Package pool provides generic bounded connection pools with health tracking.
//
// A [Pool] owns the connections for one physical endpoint. It is parameterized
// over the connection type and delegates lifecycle decisions to a [Manager]:
//
//	type Manager[C any] interface {
//		Connect(ctx context.Context) (C, error)
//		IsValid(ctx context.Context, conn C) error
//		HasBroken(conn C) bool
//		Close(conn C) error
//	}
//
// Checkout blocks until a connection is available or the pool's checkout
// timeout elapses. The pool never hands out more than its max size.
//
// # Registry and selection
//
// A [Registry] maps a pool key (a tenant or an endpoint) to an ordered list of
// [Instance] values, each a pool plus a health flag. [Registry.Select] walks the
// list once starting at a per-key rotation cursor and returns the first healthy
// instance, or [ErrUnavailable] after one full pass:
//
//	inst, err := storagePools.Select("tenant-a")
//	if err != nil {
//		return err
//	}
//	client, err := inst.Pool().Get(ctx)
//	if err != nil {
//		return err
//	}
//	defer inst.Pool().Put(client)
//
// # Health monitoring
//
// [Monitor] runs [Registry.CheckHealth] for every registered checker on a fixed
// interval using a cron scheduler. Probes run without holding the registry
// lock; only the flag update takes the write lock. Instances are never removed.
//
//	mon := pool.NewMonitor(time.Minute, logger, storagePools, sessionPools)
//	if err := mon.Start(ctx); err != nil {
//		return err
//	}
//	defer mon.Stop(context.Background())
package pool
