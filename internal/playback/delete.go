package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidgate/internal/mux"
)

// ErrMissingIdentifiers is returned when a delete request carries no asset id,
// playback id, or playback URL to work from.
var ErrMissingIdentifiers = errors.New("no asset id, playback id, or playback URL provided")

// DeleteRequest names the asset to delete by any identifier the caller holds.
// Fields are consulted in order: AssetID, then PlaybackID, then PlaybackURL.
type DeleteRequest struct {
	AssetID     string
	PlaybackID  string
	PlaybackURL string
}

// DeleteResult reports the outcome of an idempotent delete. AlreadyDeleted is
// set when the platform no longer knew the asset (or the playback id used to
// locate it).
type DeleteResult struct {
	AssetID        string
	AlreadyDeleted bool
}

// DeleteByIdentifier normalises the request down to an asset id and deletes
// it. A remote 404 at any step counts as success: the end state the caller
// asked for — asset gone — already holds.
func (r *Resolver) DeleteByIdentifier(ctx context.Context, req DeleteRequest) (DeleteResult, error) {
	assetID := strings.TrimSpace(req.AssetID)

	if assetID == "" {
		playbackID := strings.TrimSpace(req.PlaybackID)
		if playbackID == "" {
			playbackID = ExtractPlaybackID(req.PlaybackURL)
		}
		if playbackID == "" {
			return DeleteResult{}, ErrMissingIdentifiers
		}
		ref, err := r.platform.GetPlaybackID(ctx, playbackID)
		if err != nil {
			if mux.IsNotFound(err) {
				r.metrics.ObserveDeletion("already_deleted")
				return DeleteResult{AlreadyDeleted: true}, nil
			}
			return DeleteResult{}, err
		}
		if ref.Object.Type != "" && ref.Object.Type != "asset" {
			return DeleteResult{}, fmt.Errorf("playback id %s belongs to a %s, not an asset", playbackID, ref.Object.Type)
		}
		assetID = ref.Object.ID
	}

	if err := r.platform.DeleteAsset(ctx, assetID); err != nil {
		if mux.IsNotFound(err) {
			r.metrics.ObserveDeletion("already_deleted")
			return DeleteResult{AssetID: assetID, AlreadyDeleted: true}, nil
		}
		return DeleteResult{}, err
	}
	r.metrics.ObserveDeletion("deleted")
	r.logger.Info("asset deleted", "asset_id", assetID)
	return DeleteResult{AssetID: assetID}, nil
}

const streamHost = "stream.mux.com/"

// ExtractPlaybackID pulls the playback id out of a streaming URL. The id is
// the path segment after stream.mux.com, terminated by ".m3u8", a query
// string, a further path segment, or the end of the string. Returns "" when
// the URL does not match that shape.
func ExtractPlaybackID(rawURL string) string {
	idx := strings.Index(rawURL, streamHost)
	if idx < 0 {
		return ""
	}
	rest := rawURL[idx+len(streamHost):]
	if cut := strings.IndexAny(rest, ".?/"); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}
