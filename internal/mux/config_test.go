package mux

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VIDGATE_MUX_TOKEN_ID", "id")
	t.Setenv("VIDGATE_MUX_TOKEN_SECRET", "secret")
	t.Setenv("VIDGATE_MUX_TOKEN_TTL", "45m")
	t.Setenv("VIDGATE_MUX_UPLOAD_POLICY", "public")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.TokenID != "id" || cfg.TokenSecret != "secret" {
		t.Fatalf("unexpected credentials %+v", cfg)
	}
	if cfg.TokenTTL != 45*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.TokenTTL)
	}
	if cfg.SigningEnabled() {
		t.Fatalf("signing should be disabled without keys")
	}
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	t.Setenv("VIDGATE_MUX_TOKEN_ID", "")
	t.Setenv("VIDGATE_MUX_TOKEN_SECRET", "")

	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatalf("expected an error without credentials")
	}
}

func TestValidateSigningPairs(t *testing.T) {
	cfg := Config{TokenID: "id", TokenSecret: "secret", SigningKeyID: "kid"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when only the key id is set")
	}

	cfg = Config{TokenID: "id", TokenSecret: "secret", UploadPolicy: PolicySigned}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("signed upload policy without keys must be rejected")
	}

	cfg = Config{TokenID: "id", TokenSecret: "secret", SigningKeyID: "kid", SigningKeySecret: "key", UploadPolicy: PolicySigned}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
