package playback

import (
	"context"
	"net/http"

	"vidgate/internal/mux"
)

// Platform is the subset of the Mux client the resolver depends on.
// *mux.Client satisfies it; tests substitute fakes.
type Platform interface {
	GetUpload(ctx context.Context, id string) (mux.Upload, error)
	GetAsset(ctx context.Context, id string) (mux.Asset, error)
	CreatePlaybackID(ctx context.Context, assetID string, policy mux.Policy) (mux.PlaybackID, error)
	GetPlaybackID(ctx context.Context, id string) (mux.PlaybackIDRef, error)
	DeleteAsset(ctx context.Context, id string) error
}

// TokenSigner mints signed playback tokens. *mux.Signer satisfies it.
type TokenSigner interface {
	SignPlayback(playbackID string) (string, error)
}

// Kind tags the variant of a Resolution. Every call site is expected to
// switch over all four.
type Kind string

const (
	KindPlaybackReady Kind = "playback_ready"
	KindProcessing    Kind = "processing"
	KindNotFound      Kind = "not_found"
	KindError         Kind = "error"
)

// Resolution is the terminal outcome of resolving one identifier.
//
// PlaybackReady carries PlaybackURL, AssetID, and PlaybackID. Processing
// optionally carries the asset it got far enough to read, with Encoding set
// when the asset itself is not ready yet (as opposed to ready but awaiting a
// playback ID). Error carries the classified status code and message.
type Resolution struct {
	Kind        Kind
	PlaybackURL string
	AssetID     string
	PlaybackID  string
	Asset       *mux.Asset
	Encoding    bool
	StatusCode  int
	Message     string
}

func ready(url, assetID, playbackID string) Resolution {
	return Resolution{
		Kind:        KindPlaybackReady,
		PlaybackURL: url,
		AssetID:     assetID,
		PlaybackID:  playbackID,
	}
}

func processing() Resolution {
	return Resolution{Kind: KindProcessing}
}

func processingAsset(asset mux.Asset) Resolution {
	copied := asset
	return Resolution{
		Kind:     KindProcessing,
		AssetID:  asset.ID,
		Asset:    &copied,
		Encoding: asset.Status != mux.AssetStatusReady,
	}
}

func failure(status int, message string) Resolution {
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	return Resolution{Kind: KindError, StatusCode: status, Message: message}
}

func failureFromErr(err error) Resolution {
	return failure(mux.StatusCode(err), err.Error())
}
