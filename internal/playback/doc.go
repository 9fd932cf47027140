// Package playback resolves the lifecycle state of remotely-hosted video
// assets and mediates their deletion.
//
// The frontend holds opaque identifiers: an ID it submits may be a direct
// upload handle, an asset handle, or a playback URL it was handed earlier, and
// the remote platform is eventually consistent — an upload can exist before
// its asset, an asset before it is ready, and a playback ID may not exist
// until explicitly requested. The resolver disambiguates with an ordered
// fallback chain that absorbs 404s between steps, the materializer lazily
// creates missing playback IDs, and the deletion reconciler normalises any of
// the three identifier forms down to an asset ID before deleting.
//
// The package keeps no state between calls; every entity is owned by the
// platform and read back fresh on each request. Concurrent resolutions for
// the same identifier may race to create a playback ID for one asset; the
// duplicate is harmless because the first ID found is always preferred.
package playback
