// Package api hosts the HTTP handlers that front the vidgate REST surface.
//
// Handlers coordinate request validation and response shaping while delegating
// every lifecycle decision to the playback.Resolver injected at construction
// time; the package holds no state of its own and expects callers to supply
// fully configured dependencies.
//
// Handler implementations assume upstream middleware from internal/server has
// already applied request IDs, logging, metrics, rate limiting, CORS, and
// security headers. The one authorization concern owned here is the admin
// shared-secret gate on the delete endpoints.
package api
