package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vidgate/internal/observability/metrics"
)

const defaultBaseURL = "https://api.mux.com"

// Client talks to the Mux Video REST API. Every call is a single attempt: the
// service classifies failures at the call site instead of retrying, so remote
// errors must surface immediately and unmodified.
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	client      *http.Client
	logger      *slog.Logger
	metrics     *metrics.Recorder
}

// ClientConfig carries the credentials and transport used by NewClient.
type ClientConfig struct {
	BaseURL     string
	TokenID     string
	TokenSecret string
	HTTPClient  *http.Client
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.TokenID) == "" || strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, fmt.Errorf("mux token id and secret are required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Default()
	}
	return &Client{
		baseURL:     baseURL,
		tokenID:     strings.TrimSpace(cfg.TokenID),
		tokenSecret: strings.TrimSpace(cfg.TokenSecret),
		client:      client,
		logger:      logger,
		metrics:     recorder,
	}, nil
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

type createUploadRequest struct {
	CORSOrigin       string               `json:"cors_origin,omitempty"`
	NewAssetSettings newAssetSettingsBody `json:"new_asset_settings"`
}

type newAssetSettingsBody struct {
	PlaybackPolicy []Policy `json:"playback_policy"`
}

type createPlaybackIDRequest struct {
	Policy Policy `json:"policy"`
}

// CreateUpload provisions a direct upload target the frontend can PUT bytes to.
func (c *Client) CreateUpload(ctx context.Context, params CreateUploadParams) (Upload, error) {
	policy := params.Policy
	if policy == "" {
		policy = PolicyPublic
	}
	payload := createUploadRequest{
		CORSOrigin:       strings.TrimSpace(params.CORSOrigin),
		NewAssetSettings: newAssetSettingsBody{PlaybackPolicy: []Policy{policy}},
	}
	var upload Upload
	err := c.do(ctx, "create_upload", http.MethodPost, "/video/v1/uploads", payload, &upload)
	return upload, err
}

// GetUpload fetches a direct upload by ID.
func (c *Client) GetUpload(ctx context.Context, id string) (Upload, error) {
	var upload Upload
	err := c.do(ctx, "get_upload", http.MethodGet, "/video/v1/uploads/"+url.PathEscape(id), nil, &upload)
	return upload, err
}

// GetAsset fetches an asset by ID.
func (c *Client) GetAsset(ctx context.Context, id string) (Asset, error) {
	var asset Asset
	err := c.do(ctx, "get_asset", http.MethodGet, "/video/v1/assets/"+url.PathEscape(id), nil, &asset)
	return asset, err
}

// CreatePlaybackID asks the platform to mint a playback ID for the asset.
func (c *Client) CreatePlaybackID(ctx context.Context, assetID string, policy Policy) (PlaybackID, error) {
	if policy == "" {
		policy = PolicyPublic
	}
	var playback PlaybackID
	path := "/video/v1/assets/" + url.PathEscape(assetID) + "/playback-ids"
	err := c.do(ctx, "create_playback_id", http.MethodPost, path, createPlaybackIDRequest{Policy: policy}, &playback)
	return playback, err
}

// GetPlaybackID resolves a standalone playback ID to its owning object.
func (c *Client) GetPlaybackID(ctx context.Context, id string) (PlaybackIDRef, error) {
	var ref PlaybackIDRef
	err := c.do(ctx, "get_playback_id", http.MethodGet, "/video/v1/playback-ids/"+url.PathEscape(id), nil, &ref)
	return ref, err
}

// DeleteAsset removes an asset and all of its playback IDs.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.do(ctx, "delete_asset", http.MethodDelete, "/video/v1/assets/"+url.PathEscape(id), nil, nil)
}

// Ping performs a cheap authenticated list call so health checks can confirm
// credentials and connectivity.
func (c *Client) Ping(ctx context.Context) error {
	var assets []Asset
	return c.do(ctx, "ping", http.MethodGet, "/video/v1/assets?limit=1", nil, &assets)
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload, dest interface{}) error {
	c.metrics.ObservePlatformAttempt(operation)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.metrics.ObservePlatformFailure(operation)
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		c.metrics.ObservePlatformFailure(operation)
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObservePlatformFailure(operation)
		return fmt.Errorf("mux %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		if apiErr.StatusCode != http.StatusNotFound {
			c.metrics.ObservePlatformFailure(operation)
			c.logger.Warn("mux API call failed",
				"operation", operation,
				"status", apiErr.StatusCode,
				"message", apiErr.Message)
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	var envelope dataEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.metrics.ObservePlatformFailure(operation)
		return fmt.Errorf("decode mux %s response: %w", operation, err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		c.metrics.ObservePlatformFailure(operation)
		return fmt.Errorf("decode mux %s payload: %w", operation, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && (envelope.Error.Type != "" || len(envelope.Error.Messages) > 0) {
		apiErr.Type = envelope.Error.Type
		apiErr.Message = strings.Join(envelope.Error.Messages, "; ")
		return apiErr
	}
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		apiErr.Message = trimmed
	}
	return apiErr
}
