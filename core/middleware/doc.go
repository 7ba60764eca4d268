// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key). An empty key disables it.
//   - rayid: assigns a request id (X-Ray-ID), stores it in locals for
//     logger.WithRayID and echoes it in the response.
//
// Both are registered globally in the start command.
package middleware
