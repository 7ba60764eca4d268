// Package visits implements visit tracking on top of the reconcile engine.
//
// Clients post intersection snapshots: the set of features a user is inside
// at one instant. Each snapshot is folded into the user's stored visits under
// a per-user lock, so the load, reconcile and persist steps never interleave
// for one user.
//
// # Components
//
//   - Store: Persists each user's visits as one replaceable set (GORM).
//   - Service: Validates, locks, reconciles and persists snapshots.
//   - Cache: Short-lived read projections with coalesced loads.
//   - Archive: Optional copy of every applied snapshot in object storage, used by rebuilds.
//   - Handler: Exposes the HTTP endpoints.
//   - Loader: Registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /intersections : Ingest one snapshot or an array of snapshots.
//   - GET /visits/:userId : List a user's visits.
//   - DELETE /visits/:userId : Reset a user's visits (supports ?purge=true).
//   - POST /visits/:userId/rebuild : Replay the user's archived snapshots.
package visits
