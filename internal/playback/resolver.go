package playback

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"vidgate/internal/mux"
	"vidgate/internal/observability/metrics"
)

const streamBaseURL = "https://stream.mux.com"

// Resolver orchestrates identifier resolution and playback materialization
// against the remote platform. It holds no per-request state and is safe for
// concurrent use.
type Resolver struct {
	platform Platform
	signer   TokenSigner
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// Config wires a Resolver. Signer may be nil when the deployment has no
// signing keys; signed requests then fail fast with a configuration error.
type Config struct {
	Platform Platform
	Signer   TokenSigner
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("platform client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Default()
	}
	return &Resolver{
		platform: cfg.Platform,
		signer:   cfg.Signer,
		logger:   logger,
		metrics:  recorder,
	}, nil
}

// SigningEnabled reports whether signed playback URLs can be produced.
func (r *Resolver) SigningEnabled() bool {
	return r.signer != nil
}

// Resolve disambiguates an opaque identifier and materializes playback for it.
//
// The chain is ordered: the upload lookup runs first because a frontend
// usually holds the upload handle it was given at submission time. A 404 on
// any step is a normal part of disambiguation, never a hard failure, and an
// identifier that matches neither lookup is reported as still processing —
// a just-submitted upload may not be visible to either endpoint yet, and a
// premature "not found" would race the platform's read-after-write lag.
func (r *Resolver) Resolve(ctx context.Context, id string, signed bool) Resolution {
	res := r.resolve(ctx, id, signed)
	r.metrics.ObserveResolution(string(res.Kind))
	return res
}

func (r *Resolver) resolve(ctx context.Context, id string, signed bool) Resolution {
	upload, err := r.platform.GetUpload(ctx, id)
	switch {
	case err == nil:
		if upload.AssetID == "" {
			// Upload exists but ingestion has not produced an asset yet.
			return processing()
		}
		asset, err := r.platform.GetAsset(ctx, upload.AssetID)
		if err != nil {
			if mux.IsNotFound(err) {
				// The upload already names an asset the asset endpoint
				// cannot see; read lag, not an error.
				return processing()
			}
			return failureFromErr(err)
		}
		return r.materialize(ctx, asset, signed)
	case mux.IsNotFound(err):
		// Not an upload. Fall through to the direct asset lookup.
	default:
		return failureFromErr(err)
	}

	asset, err := r.platform.GetAsset(ctx, id)
	if err != nil {
		if mux.IsNotFound(err) {
			// Absent ids are reported as processing rather than 404 so a
			// frontend polling right after submission never sees a premature
			// not-found. The cost is that a genuinely invalid id also reads
			// as processing forever; changing that is a product decision.
			return processing()
		}
		return failureFromErr(err)
	}
	return r.materialize(ctx, asset, signed)
}

// Materialize ensures the asset has a playback ID and constructs its playback
// URL. Used directly by the by-asset endpoints and by Resolve.
func (r *Resolver) Materialize(ctx context.Context, asset mux.Asset, signed bool) Resolution {
	res := r.materialize(ctx, asset, signed)
	r.metrics.ObserveResolution(string(res.Kind))
	return res
}

func (r *Resolver) materialize(ctx context.Context, asset mux.Asset, signed bool) Resolution {
	if signed && r.signer == nil {
		// Refusing beats silently downgrading a signed stream to public.
		return failure(http.StatusBadRequest, "signed playback requested but signing keys are not configured")
	}

	playbackID := firstPlaybackID(asset)
	if playbackID == "" {
		policy := mux.PolicyPublic
		if signed {
			policy = mux.PolicySigned
		}
		created, err := r.platform.CreatePlaybackID(ctx, asset.ID, policy)
		if err != nil {
			// Creation is best-effort inside a resolution: report the asset
			// as processing and let the next poll try again.
			r.logger.Warn("playback id creation failed",
				"asset_id", asset.ID,
				"policy", string(policy),
				"error", err)
		} else {
			playbackID = created.ID
			r.metrics.PlaybackIDCreated()
		}
	}

	if playbackID == "" {
		return processingAsset(asset)
	}

	if signed {
		token, err := r.signer.SignPlayback(playbackID)
		if err != nil {
			return failure(http.StatusInternalServerError, fmt.Sprintf("sign playback token: %v", err))
		}
		url := fmt.Sprintf("%s/%s.m3u8?token=%s", streamBaseURL, playbackID, token)
		return ready(url, asset.ID, playbackID)
	}
	url := fmt.Sprintf("%s/%s.m3u8", streamBaseURL, playbackID)
	return ready(url, asset.ID, playbackID)
}

// SignedPlaybackURL mints a token for an already-known playback ID without
// touching the platform.
func (r *Resolver) SignedPlaybackURL(playbackID string) (string, error) {
	if r.signer == nil {
		return "", fmt.Errorf("signing keys are not configured")
	}
	token, err := r.signer.SignPlayback(playbackID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s.m3u8?token=%s", streamBaseURL, playbackID, token), nil
}

// PublicPlaybackURL builds the unsigned streaming URL for a playback ID.
func PublicPlaybackURL(playbackID string) string {
	return fmt.Sprintf("%s/%s.m3u8", streamBaseURL, playbackID)
}

func firstPlaybackID(asset mux.Asset) string {
	// Ordering is platform-assigned and stable; the first entry is the
	// first-created ID and stays the canonical choice across requests.
	if len(asset.PlaybackIDs) == 0 {
		return ""
	}
	return asset.PlaybackIDs[0].ID
}
