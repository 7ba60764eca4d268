// Package lock provides keyed mutual exclusion for per-user read-modify-write cycles.
//
// Two implementations satisfy the Locker interface:
//   - Local: an in-process keyed mutex, enough for a single service instance.
//   - Redis: a lease held in Redis (SET NX PX), shared by every replica pointing
//     at the same Redis database. The lease is extended while held; if it is
//     lost the context returned by Lock is cancelled with ErrLeaseLost.
//
// # Usage
//
//	locker, err := lock.New(cfg, logger)
//	ctx, unlock, err := locker.Lock(ctx, "user-1")
//	if err != nil {
//	    return err
//	}
//	defer unlock()
//	// use ctx for everything that must stay exclusive
package lock
