// Package mux provides the HTTP client for the Mux Video platform.
//
// The platform owns the full lifecycle of every entity this service touches:
// direct uploads, assets, and playback IDs. The client is a thin adapter over
// the REST API — it performs a single attempt per call and reports failures as
// *APIError values carrying the remote status code, so callers can classify
// outcomes (most importantly, distinguish 404 from everything else) without
// parsing error text.
//
// Signed playback support lives in Signer, which mints the short-lived RS256
// tokens that Mux requires on signed-policy playback URLs. Signing keys are
// optional; a nil Signer means the deployment only serves public playback.
package mux
