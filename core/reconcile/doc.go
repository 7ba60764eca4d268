// Package reconcile turns a stream of intersection snapshots into visits.
//
// A snapshot says which features a user occupies at one instant. A visit is a
// closed interval [start, finish] during which the user is assumed to have
// stayed in one feature. The package keeps, per user, an Index of visits and
// folds each new snapshot into it.
//
// # Algorithm
//
// Each call runs two passes on a copy of the index:
//
// 1. Split: every visit of a feature missing from the snapshot whose open
// interval contains the snapshot instant is partitioned into [start, t]
// (same id) and [t, finish] (new id, appended).
//
// 2. Extend or create: for each listed feature, in order, nothing happens if
// a visit already covers t. If t lies past the feature's latest finish or
// before its earliest start, that edge moves to t unless another visit edge
// of the user lies strictly between the old edge and t. Otherwise a point
// visit [t, t] is appended.
//
// Re-applying a snapshot that was already absorbed returns an identical
// index. Snapshots may arrive in any order; non-overlap and idempotence hold
// regardless, although the final partitioning can differ from chronological
// delivery.
//
// # Usage
//
//	idx := reconcile.NewIndex("user-1")
//	idx = reconcile.Apply(idx, &reconcile.Snapshot{
//	    ID:        "s1",
//	    UserID:    "user-1",
//	    Features:  []reconcile.Feature{{ID: "CA"}, {ID: "SC"}},
//	    Timestamp: 2,
//	})
//
// The Reconciler never touches storage; feature/visits loads and persists
// indexes around it.
package reconcile
