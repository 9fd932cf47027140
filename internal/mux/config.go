package mux

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config stores connectivity and signing settings for the platform client.
type Config struct {
	BaseURL          string
	TokenID          string
	TokenSecret      string
	SigningKeyID     string
	SigningKeySecret string
	TokenTTL         time.Duration
	UploadCORSOrigin string
	UploadPolicy     Policy
	HTTPTimeout      time.Duration
	HTTPClient       *http.Client
}

// LoadConfigFromEnv initialises a Config from environment variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		BaseURL:          strings.TrimSpace(os.Getenv("VIDGATE_MUX_BASE_URL")),
		TokenID:          strings.TrimSpace(os.Getenv("VIDGATE_MUX_TOKEN_ID")),
		TokenSecret:      strings.TrimSpace(os.Getenv("VIDGATE_MUX_TOKEN_SECRET")),
		SigningKeyID:     strings.TrimSpace(os.Getenv("VIDGATE_MUX_SIGNING_KEY_ID")),
		SigningKeySecret: strings.TrimSpace(os.Getenv("VIDGATE_MUX_SIGNING_KEY_SECRET")),
		UploadCORSOrigin: strings.TrimSpace(os.Getenv("VIDGATE_MUX_UPLOAD_CORS_ORIGIN")),
		UploadPolicy:     PolicyPublic,
		HTTPTimeout:      30 * time.Second,
	}

	if ttl := strings.TrimSpace(os.Getenv("VIDGATE_MUX_TOKEN_TTL")); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("parse VIDGATE_MUX_TOKEN_TTL: %w", err)
		}
		if parsed > 0 {
			cfg.TokenTTL = parsed
		}
	}

	if timeout := strings.TrimSpace(os.Getenv("VIDGATE_MUX_HTTP_TIMEOUT")); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse VIDGATE_MUX_HTTP_TIMEOUT: %w", err)
		}
		if parsed > 0 {
			cfg.HTTPTimeout = parsed
		}
	}

	if policy := strings.ToLower(strings.TrimSpace(os.Getenv("VIDGATE_MUX_UPLOAD_POLICY"))); policy != "" {
		switch Policy(policy) {
		case PolicyPublic, PolicySigned:
			cfg.UploadPolicy = Policy(policy)
		default:
			return Config{}, fmt.Errorf("invalid VIDGATE_MUX_UPLOAD_POLICY %q", policy)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the credentials required for any platform call are set.
func (c Config) Validate() error {
	if c.TokenID == "" || c.TokenSecret == "" {
		return fmt.Errorf("VIDGATE_MUX_TOKEN_ID and VIDGATE_MUX_TOKEN_SECRET are required")
	}
	if (c.SigningKeyID == "") != (c.SigningKeySecret == "") {
		return fmt.Errorf("signing key id and secret must be configured together")
	}
	if c.UploadPolicy == PolicySigned && !c.SigningEnabled() {
		return fmt.Errorf("signed upload policy requires signing keys")
	}
	return nil
}

// SigningEnabled reports whether signed playback can be served.
func (c Config) SigningEnabled() bool {
	return c.SigningKeyID != "" && c.SigningKeySecret != ""
}
