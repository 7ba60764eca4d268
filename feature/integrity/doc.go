// Package integrity provides health checks over the stored visits.
//
// Unlike the 'visits' package which applies snapshots, this package only
// reads: it validates what is already persisted.
//
// # Checks Provided
//
//   - Visits: Loads each user's index and reports invariant violations (start after finish, boundary drift, same-feature overlap).
//   - Server: Validates that the connected database schema matches the visit model (columns, types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/visits : Runs the visits check (supports ?userId=).
//   - GET /integrity/server : Runs server schema check.
package integrity
