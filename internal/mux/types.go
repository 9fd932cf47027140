package mux

// Policy controls how a playback ID may be consumed.
type Policy string

const (
	PolicyPublic Policy = "public"
	PolicySigned Policy = "signed"
)

// Asset statuses reported by the platform.
const (
	AssetStatusPreparing = "preparing"
	AssetStatusReady     = "ready"
	AssetStatusErrored   = "errored"
)

// Upload is a direct upload target. AssetID stays empty until the platform
// finishes ingesting the uploaded bytes.
type Upload struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	AssetID string `json:"asset_id,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Asset is the durable record of a video after ingestion.
type Asset struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	PlaybackIDs []PlaybackID `json:"playback_ids,omitempty"`
}

// PlaybackID is an opaque handle used to construct a streaming URL.
type PlaybackID struct {
	ID     string `json:"id"`
	Policy Policy `json:"policy"`
}

// PlaybackIDRef is the platform's answer to a standalone playback ID lookup;
// Object names the owner (normally an asset) the playback ID belongs to.
type PlaybackIDRef struct {
	ID     string          `json:"id"`
	Policy Policy          `json:"policy"`
	Object PlaybackIDOwner `json:"object"`
}

// PlaybackIDOwner identifies the object a playback ID is attached to.
type PlaybackIDOwner struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// CreateUploadParams configures a new direct upload target.
type CreateUploadParams struct {
	CORSOrigin string
	Policy     Policy
}
